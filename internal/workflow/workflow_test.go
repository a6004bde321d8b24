package workflow_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"easel/internal/asset"
	"easel/internal/client"
	"easel/internal/logging"
	"easel/internal/services"
	"easel/internal/workflow"
)

type fakeUploader struct {
	mu      sync.Mutex
	calls   int32
	result  client.UploadResult
	err     error
	release chan struct{}
	entered chan struct{}
}

func (f *fakeUploader) Upload(ctx context.Context, filePath string) (client.UploadResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeUploader) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

type fakeModifier struct {
	mu        sync.Mutex
	calls     int32
	gotID     string
	gotPrompt string
	result    client.ModifyResult
	err       error
	release   chan struct{}
	entered   chan struct{}
}

func (f *fakeModifier) Modify(ctx context.Context, assetID, prompt string) (client.ModifyResult, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.gotID = assetID
	f.gotPrompt = prompt
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeModifier) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

func registeredSession(t *testing.T, assetID string) (*workflow.Session, *fakeUploader) {
	t.Helper()
	session := workflow.NewSession()
	uploader := &fakeUploader{result: client.UploadResult{
		AssetID:     assetID,
		Message:     "Image uploaded and asset registered.",
		SourceName:  "cat.png",
		OriginalURL: "http://service/uploads/cat.png",
	}}
	coord := workflow.NewUploadCoordinator(session, uploader, nil, logging.NewNop())
	if err := coord.SubmitUpload(context.Background(), "/tmp/cat.png"); err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	return session, uploader
}

func TestSubmitUploadRejectsEmptySelection(t *testing.T) {
	session := workflow.NewSession()
	uploader := &fakeUploader{}
	coord := workflow.NewUploadCoordinator(session, uploader, nil, logging.NewNop())

	err := coord.SubmitUpload(context.Background(), "   ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if uploader.callCount() != 0 {
		t.Fatalf("uploader called %d times for empty selection", uploader.callCount())
	}
	if got := session.CurrentAsset().Status; got != asset.StatusUnselected {
		t.Fatalf("status = %q, want unselected", got)
	}
	note, ok := session.Notification()
	if !ok || note.Message != "Please select an image file to upload." {
		t.Fatalf("notification = %+v", note)
	}
	if note.Severity != workflow.SeverityError {
		t.Fatalf("severity = %q", note.Severity)
	}
}

func TestSubmitUploadRegistersAsset(t *testing.T) {
	session, _ := registeredSession(t, "a1")

	current := session.CurrentAsset()
	if current.Status != asset.StatusRegistered {
		t.Fatalf("status = %q", current.Status)
	}
	if current.ID != "a1" {
		t.Fatalf("asset id = %q", current.ID)
	}
	if current.SourceName != "cat.png" {
		t.Fatalf("source name = %q", current.SourceName)
	}
	if !session.OriginalVisible() || session.ModifiedVisible() {
		t.Fatalf("visibility: original=%v modified=%v", session.OriginalVisible(), session.ModifiedVisible())
	}
	note, _ := session.Notification()
	if note.Severity != workflow.SeveritySuccess {
		t.Fatalf("severity = %q", note.Severity)
	}
	if note.Message != "Image uploaded and asset registered." {
		t.Fatalf("message = %q", note.Message)
	}
}

func TestSubmitUploadSurfacesServiceFailure(t *testing.T) {
	session := workflow.NewSession()
	uploader := &fakeUploader{err: services.Wrap(services.ErrService, "", "", "unsupported file type", nil)}
	coord := workflow.NewUploadCoordinator(session, uploader, nil, logging.NewNop())

	if err := coord.SubmitUpload(context.Background(), "/tmp/cat.txt"); err == nil {
		t.Fatal("expected error")
	}
	current := session.CurrentAsset()
	if current.Status != asset.StatusFailed {
		t.Fatalf("status = %q", current.Status)
	}
	if current.ErrorMessage != "unsupported file type" {
		t.Fatalf("error message = %q", current.ErrorMessage)
	}
	note, _ := session.Notification()
	if note.Message != "Upload failed: unsupported file type" {
		t.Fatalf("notification = %q", note.Message)
	}
	if session.OriginalVisible() {
		t.Fatal("original view visible after failed upload")
	}
}

func TestSubmitUploadKeepsTransportDetailOutOfNotification(t *testing.T) {
	session := workflow.NewSession()
	uploader := &fakeUploader{err: services.Wrap(services.ErrTransport, "upload", "send request", "", errors.New("dial tcp: connection refused"))}
	coord := workflow.NewUploadCoordinator(session, uploader, nil, logging.NewNop())

	if err := coord.SubmitUpload(context.Background(), "/tmp/cat.png"); err == nil {
		t.Fatal("expected error")
	}
	note, _ := session.Notification()
	if note.Message != "Upload failed: Upload failed. Please check that the service is running." {
		t.Fatalf("notification leaked transport detail: %q", note.Message)
	}
}

func TestSubmitModificationRequiresRegisteredAsset(t *testing.T) {
	session := workflow.NewSession()
	modifier := &fakeModifier{}
	coord := workflow.NewModificationCoordinator(session, modifier, nil, logging.NewNop())

	err := coord.SubmitModification(context.Background(), "make it blue")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if modifier.callCount() != 0 {
		t.Fatalf("modifier called %d times without an asset", modifier.callCount())
	}
	note, _ := session.Notification()
	if note.Message != "Please upload an image first to get an asset ID." {
		t.Fatalf("notification = %q", note.Message)
	}
}

func TestSubmitModificationChecksAssetBeforePrompt(t *testing.T) {
	// Both preconditions fail; the asset check must win.
	session := workflow.NewSession()
	modifier := &fakeModifier{}
	coord := workflow.NewModificationCoordinator(session, modifier, nil, logging.NewNop())

	err := coord.SubmitModification(context.Background(), "   ")
	if !errors.Is(err, workflow.ErrNoAssetRegistered) {
		t.Fatalf("expected no-asset error, got %v", err)
	}
}

func TestSubmitModificationRejectsBlankPrompt(t *testing.T) {
	session, _ := registeredSession(t, "a1")
	modifier := &fakeModifier{}
	coord := workflow.NewModificationCoordinator(session, modifier, nil, logging.NewNop())

	err := coord.SubmitModification(context.Background(), " \t ")
	if !errors.Is(err, workflow.ErrEmptyPrompt) {
		t.Fatalf("expected empty-prompt error, got %v", err)
	}
	if modifier.callCount() != 0 {
		t.Fatalf("modifier called %d times for blank prompt", modifier.callCount())
	}
	if got := session.CurrentAsset().Status; got != asset.StatusRegistered {
		t.Fatalf("status = %q after rejected prompt", got)
	}
}

func TestSubmitModificationSendsExactAssetIDAndTrimmedPrompt(t *testing.T) {
	session, _ := registeredSession(t, "a1")
	modifier := &fakeModifier{result: client.ModifyResult{
		AssetID:     "d1",
		Message:     "Modification applied.",
		ModifiedURL: "http://service/derived/cat-d1.png",
	}}
	coord := workflow.NewModificationCoordinator(session, modifier, nil, logging.NewNop())

	if err := coord.SubmitModification(context.Background(), "  make it blue  "); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if modifier.gotID != "a1" {
		t.Fatalf("sent asset id = %q, want the registered id verbatim", modifier.gotID)
	}
	if modifier.gotPrompt != "make it blue" {
		t.Fatalf("sent prompt = %q", modifier.gotPrompt)
	}

	current := session.CurrentAsset()
	if current.Status != asset.StatusModified {
		t.Fatalf("status = %q", current.Status)
	}
	if current.ModifiedURL != "http://service/derived/cat-d1.png" {
		t.Fatalf("modified url = %q", current.ModifiedURL)
	}
	if !session.OriginalVisible() || !session.ModifiedVisible() {
		t.Fatalf("visibility: original=%v modified=%v", session.OriginalVisible(), session.ModifiedVisible())
	}
	req, ok := session.CurrentModification()
	if !ok || !req.Succeeded() {
		t.Fatalf("modification request = %+v ok=%v", req, ok)
	}
}

func TestSubmitModificationFailureRollsBackToRegistered(t *testing.T) {
	session, _ := registeredSession(t, "a1")
	modifier := &fakeModifier{err: services.Wrap(services.ErrService, "", "", "engine overloaded", nil)}
	coord := workflow.NewModificationCoordinator(session, modifier, nil, logging.NewNop())

	if err := coord.SubmitModification(context.Background(), "make it blue"); err == nil {
		t.Fatal("expected error")
	}

	current := session.CurrentAsset()
	if current.Status != asset.StatusRegistered {
		t.Fatalf("status = %q, want rollback to registered", current.Status)
	}
	if current.ID != "a1" {
		t.Fatalf("asset id changed on failure: %q", current.ID)
	}
	note, _ := session.Notification()
	if note.Message != "Modification failed: engine overloaded" {
		t.Fatalf("notification = %q", note.Message)
	}
	req, ok := session.CurrentModification()
	if !ok || req.Succeeded() || !req.Resolved() {
		t.Fatalf("modification request = %+v ok=%v", req, ok)
	}
	if req.Outcome.FailureReason != "engine overloaded" {
		t.Fatalf("failure reason = %q", req.Outcome.FailureReason)
	}

	// The registration is still good, so a retry must be allowed.
	if err := coord.SubmitModification(context.Background(), "try again"); err == nil {
		t.Fatal("expected second attempt to reach the modifier and fail")
	}
	if modifier.callCount() != 2 {
		t.Fatalf("modifier calls = %d", modifier.callCount())
	}
}

func TestNewUploadSupersedesInFlightUpload(t *testing.T) {
	session := workflow.NewSession()
	slow := &fakeUploader{
		result:  client.UploadResult{AssetID: "stale", SourceName: "old.png", OriginalURL: "http://service/uploads/old.png"},
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	slowCoord := workflow.NewUploadCoordinator(session, slow, nil, logging.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- slowCoord.SubmitUpload(context.Background(), "/tmp/old.png")
	}()
	<-slow.entered

	fast := &fakeUploader{result: client.UploadResult{
		AssetID:     "fresh",
		Message:     "Image uploaded and asset registered.",
		SourceName:  "new.png",
		OriginalURL: "http://service/uploads/new.png",
	}}
	fastCoord := workflow.NewUploadCoordinator(session, fast, nil, logging.NewNop())
	if err := fastCoord.SubmitUpload(context.Background(), "/tmp/new.png"); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	close(slow.release)
	if err := <-done; err != nil {
		t.Fatalf("first upload returned error: %v", err)
	}

	current := session.CurrentAsset()
	if current.ID != "fresh" {
		t.Fatalf("asset id = %q, want the later upload to win", current.ID)
	}
	if current.SourceName != "new.png" {
		t.Fatalf("source name = %q", current.SourceName)
	}
	if current.OriginalURL != "http://service/uploads/new.png" {
		t.Fatalf("original url = %q, fields from different uploads mixed", current.OriginalURL)
	}
}

func TestStaleUploadFailureDoesNotClobberNewerState(t *testing.T) {
	session := workflow.NewSession()
	slow := &fakeUploader{
		err:     services.Wrap(services.ErrService, "", "", "disk full", nil),
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	slowCoord := workflow.NewUploadCoordinator(session, slow, nil, logging.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- slowCoord.SubmitUpload(context.Background(), "/tmp/old.png")
	}()
	<-slow.entered

	fast := &fakeUploader{result: client.UploadResult{
		AssetID:     "fresh",
		SourceName:  "new.png",
		OriginalURL: "http://service/uploads/new.png",
	}}
	fastCoord := workflow.NewUploadCoordinator(session, fast, nil, logging.NewNop())
	if err := fastCoord.SubmitUpload(context.Background(), "/tmp/new.png"); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	close(slow.release)
	<-done

	current := session.CurrentAsset()
	if current.Status != asset.StatusRegistered || current.ID != "fresh" {
		t.Fatalf("stale failure clobbered state: %+v", current)
	}
	note, _ := session.Notification()
	if note.Severity == workflow.SeverityError {
		t.Fatalf("stale failure replaced notification: %+v", note)
	}
}

func TestNewUploadSupersedesInFlightModification(t *testing.T) {
	session, _ := registeredSession(t, "a1")
	slow := &fakeModifier{
		result:  client.ModifyResult{AssetID: "d1", ModifiedURL: "http://service/derived/stale.png"},
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	modCoord := workflow.NewModificationCoordinator(session, slow, nil, logging.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- modCoord.SubmitModification(context.Background(), "make it blue")
	}()
	<-slow.entered

	uploader := &fakeUploader{result: client.UploadResult{
		AssetID:     "a2",
		SourceName:  "dog.png",
		OriginalURL: "http://service/uploads/dog.png",
	}}
	upCoord := workflow.NewUploadCoordinator(session, uploader, nil, logging.NewNop())
	if err := upCoord.SubmitUpload(context.Background(), "/tmp/dog.png"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	close(slow.release)
	if err := <-done; err != nil {
		t.Fatalf("modification returned error: %v", err)
	}

	current := session.CurrentAsset()
	if current.ID != "a2" || current.Status != asset.StatusRegistered {
		t.Fatalf("stale modification clobbered new upload: %+v", current)
	}
	if current.ModifiedURL != "" {
		t.Fatalf("modified url = %q, stale derived result applied to new asset", current.ModifiedURL)
	}
	if _, ok := session.CurrentModification(); ok {
		t.Fatal("superseded modification request still attached to session")
	}
}

func TestModifyAfterModifyUsesOriginalAssetID(t *testing.T) {
	// A derived result never becomes the modification target. The registered
	// asset id stays the handle for every subsequent prompt.
	session, _ := registeredSession(t, "a1")
	modifier := &fakeModifier{result: client.ModifyResult{
		AssetID:     "d1",
		ModifiedURL: "http://service/derived/one.png",
	}}
	coord := workflow.NewModificationCoordinator(session, modifier, nil, logging.NewNop())

	if err := coord.SubmitModification(context.Background(), "first"); err != nil {
		t.Fatalf("first modify: %v", err)
	}
	modifier.mu.Lock()
	modifier.result = client.ModifyResult{AssetID: "d2", ModifiedURL: "http://service/derived/two.png"}
	modifier.mu.Unlock()

	if err := coord.SubmitModification(context.Background(), "second"); err != nil {
		t.Fatalf("second modify: %v", err)
	}
	if modifier.gotID != "a1" {
		t.Fatalf("second modify targeted %q, want the registered asset id", modifier.gotID)
	}
	if got := session.CurrentAsset().ModifiedURL; got != "http://service/derived/two.png" {
		t.Fatalf("modified url = %q", got)
	}
}
