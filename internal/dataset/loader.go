package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"salesdash/internal/errors"
	"salesdash/internal/models"
)

const (
	parseBatchSize = 10000
	maxParseWorker = 8
)

// Load reads a headered CSV file into a Table. A missing or unreadable
// file is a DATA_UNAVAILABLE error; malformed rows are skipped and
// counted, never fatal. Columns the header does not declare are simply
// absent from the resulting table.
func Load(ctx context.Context, path string) (*Table, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataUnavailableWrap(err, "sales data file is not readable")
	}
	defer f.Close()

	t, err := Read(ctx, f)
	if err != nil {
		return nil, err
	}

	slog.Info("sales data loaded",
		"path", path,
		"rows", t.Len(),
		"skipped", t.SkippedRows,
		"duration", time.Since(start),
	)
	return t, nil
}

// Read parses CSV content from r. Split out from Load so tests and
// future non-file sources can feed data directly.
func Read(ctx context.Context, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are skipped below, not fatal
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.DataUnavailableWrap(err, "sales data file has no header row")
	}

	idx := make(map[string]int, len(header))
	t := &Table{columns: make(map[string]bool)}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, known := knownColumns[name]; known {
			idx[name] = i
			t.addColumn(name)
		}
	}

	var (
		batch   [][]string
		skipped int
	)
	flush := func(lines [][]string) error {
		orders, bad, err := parseBatch(ctx, lines, idx)
		if err != nil {
			return err
		}
		t.Orders = append(t.Orders, orders...)
		skipped += bad
		return nil
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A structurally broken line; drop it and keep going.
			skipped++
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= parseBatchSize {
			if err := flush(batch); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return nil, err
		}
	}

	t.SkippedRows = skipped
	return t, nil
}

var knownColumns = map[string]struct{}{
	ColOrderID: {}, ColOrderDate: {}, ColCustomerID: {}, ColCustomerRegion: {},
	ColProductID: {}, ColProductName: {}, ColCategory: {}, ColTotalAmount: {},
	ColCustomerRating: {}, ColPaymentMethod: {},
}

// parseBatch converts raw records to orders with a bounded worker pool.
// Each worker writes its own index so row order is preserved; order
// matters downstream for mode tie-breaks and top-product ties.
func parseBatch(ctx context.Context, lines [][]string, idx map[string]int) ([]models.Order, int, error) {
	out := make([]models.Order, len(lines))
	ok := make([]bool, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParseWorker)

	for i, rec := range lines {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			o, valid := parseOrder(rec, idx)
			out[i], ok[i] = o, valid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, 0, len(lines))
	skipped := 0
	for i := range out {
		if ok[i] {
			orders = append(orders, out[i])
		} else {
			skipped++
		}
	}
	return orders, skipped, nil
}

// parseOrder maps one record onto an Order. A record shorter than the
// highest declared column index is rejected; field-level garbage
// degrades to the missing-value sentinels instead.
func parseOrder(rec []string, idx map[string]int) (models.Order, bool) {
	field := func(col string) (string, bool) {
		i, present := idx[col]
		if !present || i >= len(rec) {
			return "", present
		}
		return strings.TrimSpace(rec[i]), true
	}

	for _, i := range idx {
		if i >= len(rec) {
			return models.Order{}, false
		}
	}

	var o models.Order
	o.OrderID, _ = field(ColOrderID)
	o.OrderDateRaw, _ = field(ColOrderDate)
	o.CustomerID, _ = field(ColCustomerID)
	o.CustomerRegion, _ = field(ColCustomerRegion)
	o.ProductID, _ = field(ColProductID)
	o.ProductName, _ = field(ColProductName)
	o.Category, _ = field(ColCategory)
	o.PaymentMethod, _ = field(ColPaymentMethod)

	if s, _ := field(ColTotalAmount); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			o.TotalAmount = v
		}
	}
	if s, _ := field(ColCustomerRating); s != "" {
		// Ratings sometimes arrive as "4.0"; accept the float form.
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			r := int(v)
			if r >= 1 && r <= 5 {
				o.CustomerRating = r
			}
		}
	}
	return o, true
}
