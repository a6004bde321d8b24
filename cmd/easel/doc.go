// Command easel is the command line interface to the Easel service.
package main
