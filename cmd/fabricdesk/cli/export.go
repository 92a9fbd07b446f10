package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/loomhouse/fabricdesk/internal/export"
	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
)

// Export kinds.
const (
	KindInventory = "inventory"
	KindInvoices  = "invoices"
)

// ExportSource loads the listings that can be exported.
type ExportSource interface {
	Inventory(ctx context.Context) ([]inventoryapi.InventoryRecord, error)
	InvoiceHeaders(ctx context.Context) ([]inventoryapi.InvoiceHeader, error)
}

// ExportOptions defines the flags of the export command.
type ExportOptions struct {
	Kind    string
	Output  string
	Product string
	Stdout  io.Writer
	Stderr  io.Writer
}

// ExportCLI writes inventory or invoice workbooks from the command line.
type ExportCLI struct {
	source ExportSource
}

func NewExportCLI(source ExportSource) *ExportCLI {
	return &ExportCLI{source: source}
}

// ParseExportArgs parses `export <inventory|invoices> [-o file] [-product name]`.
func ParseExportArgs(args []string, stderr io.Writer) (ExportOptions, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts ExportOptions
	fs.StringVar(&opts.Output, "o", "", "output file, - for stdout (default <kind>.xlsx)")
	fs.StringVar(&opts.Product, "product", "", "only inventory rows whose product name contains this text")
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return opts, fmt.Errorf("export: kind required (%s or %s)", KindInventory, KindInvoices)
	}
	opts.Kind = args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return opts, err
	}
	if opts.Output == "" {
		opts.Output = opts.Kind + ".xlsx"
	}
	return opts, nil
}

// Run executes the export and returns the process exit code.
func (c *ExportCLI) Run(ctx context.Context, opts ExportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	var write func(io.Writer) error
	switch opts.Kind {
	case KindInventory:
		records, err := c.source.Inventory(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "export: load inventory: %v\n", err)
			return 1
		}
		records = filterByProduct(records, opts.Product)
		write = func(w io.Writer) error { return export.WriteInventory(w, records) }
	case KindInvoices:
		headers, err := c.source.InvoiceHeaders(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "export: load invoices: %v\n", err)
			return 1
		}
		write = func(w io.Writer) error { return export.WriteInvoices(w, headers) }
	default:
		_, _ = fmt.Fprintf(opts.Stderr, "export: unknown kind %q (expected %s or %s)\n", opts.Kind, KindInventory, KindInvoices)
		return 2
	}

	if opts.Output == "-" {
		if err := write(opts.Stdout); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
			return 1
		}
		return 0
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "export: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(opts.Stdout, "wrote %s\n", opts.Output)
	return 0
}

func filterByProduct(records []inventoryapi.InventoryRecord, product string) []inventoryapi.InventoryRecord {
	product = strings.ToLower(strings.TrimSpace(product))
	if product == "" {
		return records
	}
	out := records[:0:0]
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Product.ProductName), product) {
			out = append(out, r)
		}
	}
	return out
}
