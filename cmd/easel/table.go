package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"easel/internal/client"
)

// renderAssetTable lays out the fixed columns of `easel assets`. Only the
// byte count is right-aligned; everything else reads left to right.
func renderAssetTable(infos []client.AssetInfo) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Asset ID", "Kind", "Source", "Bytes", "Prompt"})

	for _, info := range infos {
		tw.AppendRow(table.Row{
			info.AssetID,
			info.Kind,
			truncate(info.SourceName, 32),
			strconv.FormatInt(info.SizeBytes, 10),
			truncate(info.Prompt, 28),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
