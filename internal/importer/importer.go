package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"valentine-storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.ExternalProduct) (*domain.ExternalProduct, error)
}

// CSVImporter reads product exports and upserts them as external products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      zerolog.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger,
	}
}

type csvRow struct {
	ID          string
	Name        string
	Category    string
	Price       string
	ImageURL    string
	Description string
	Tags        []string
	Active      string
	Quantity    string
}

// Run parses CSV rows and upserts one product per named row. Rows without a
// name carry extra tags for the product above them.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("read headers: missing name column")
	}

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Name != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current != nil && len(row.Tags) > 0 {
			current.Tags = append(current.Tags, row.Tags...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info().Int("imported", imported).Msg("product import finished")
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p, err := row.product()
	if err != nil {
		return err
	}
	saved, err := i.productRepo.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Name, err)
	}
	i.logger.Debug().Str("product_id", saved.ID).Str("name", saved.Name).Msg("product imported")
	return nil
}

func (r *csvRow) product() (domain.ExternalProduct, error) {
	if r.Category == "" || r.Price == "" {
		return domain.ExternalProduct{}, fmt.Errorf("invalid product row (missing required fields) for %q", r.Name)
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil || price.IsNegative() {
		return domain.ExternalProduct{}, fmt.Errorf("invalid price for %q: %s", r.Name, r.Price)
	}
	p := domain.ExternalProduct{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Price:       price.Round(2),
		ImageURL:    r.ImageURL,
		Description: r.Description,
		Tags:        dedupe(r.Tags),
	}
	if r.Active != "" {
		active, err := strconv.ParseBool(r.Active)
		if err != nil {
			return domain.ExternalProduct{}, fmt.Errorf("invalid active flag for %q: %s", r.Name, r.Active)
		}
		p.Active = &active
	}
	if r.Quantity != "" {
		qty, err := strconv.Atoi(r.Quantity)
		if err != nil || qty < 0 {
			return domain.ExternalProduct{}, fmt.Errorf("invalid quantity for %q: %s", r.Name, r.Quantity)
		}
		p.Quantity = &qty
	}
	return p, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:          pick(record, index, "id"),
		Name:        pick(record, index, "name"),
		Category:    pick(record, index, "category"),
		Price:       pick(record, index, "price"),
		ImageURL:    pick(record, index, "imageUrl"),
		Description: pick(record, index, "description"),
		Tags:        splitTags(pick(record, index, "tags")),
		Active:      pick(record, index, "active"),
		Quantity:    pick(record, index, "quantity"),
	}
	if row.Name == "" && len(row.Tags) == 0 {
		return nil
	}
	return row
}

func splitTags(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ";") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := tags[:0:0]
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
