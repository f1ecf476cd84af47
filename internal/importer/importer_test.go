package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/repository/product"
)

type stubProductRepo struct {
	items []domain.ExternalProduct
	err   error
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.ExternalProduct) (*domain.ExternalProduct, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,name,category,price,imageUrl,description,tags,active,quantity
locket-1,Heart Locket,Jewelry,59.5,https://example.com/locket.jpg,Engravable,gold;Heart,,3
,,,,,,keepsake,,
,Retired Bear,Teddy Bears,18,,,,false,
`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, zerolog.Nop())

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}

	first := repo.items[0]
	if first.ID != "locket-1" || first.Name != "Heart Locket" || first.Category != "Jewelry" || first.Price.String() != "59.5" {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if strings.Join(first.Tags, ",") != "gold,heart,keepsake" {
		t.Fatalf("expected continuation tags to be merged, got %v", first.Tags)
	}
	if first.Quantity == nil || *first.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %v", first.Quantity)
	}
	if !first.IsActive() {
		t.Fatalf("expected missing active flag to mean active")
	}
	if repo.items[1].IsActive() {
		t.Fatalf("expected second product inactive")
	}
}

func TestCSVImporter_RejectsInvalidRows(t *testing.T) {
	cases := map[string]string{
		"missing price": "name,category,price\nRoses,Flowers,\n",
		"bad price":     "name,category,price\nRoses,Flowers,cheap\n",
		"bad quantity":  "name,category,price,quantity\nRoses,Flowers,10,-1\n",
		"bad active":    "name,category,price,active\nRoses,Flowers,10,maybe\n",
		"no name col":   "title,category,price\nRoses,Flowers,10\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(data), &stubProductRepo{}, zerolog.Nop())
			if _, err := imp.Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCSVImporter_PropagatesWriteErrors(t *testing.T) {
	repo := &stubProductRepo{err: errors.New("store down")}
	imp := NewCSVImporter(strings.NewReader("name,category,price\nRoses,Flowers,10\n"), repo, zerolog.Nop())
	if _, err := imp.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "store down") {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestCSVImporter_WritesDocumentStore(t *testing.T) {
	ctx := context.Background()
	repo := product.NewDocstore(docstore.NewMemory(), zerolog.Nop())
	csvData := "id,name,category,price\nr1,Roses,Flowers,24.99\nr1,Roses Deluxe,Flowers,34.99\n,Tulips,Flowers,12\n"

	count, err := NewCSVImporter(strings.NewReader(csvData), repo, zerolog.Nop()).Run(ctx)
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows imported, got %d", count)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected re-imported id to be replaced, got %d products", len(list))
	}
	got, err := repo.Get(ctx, "r1")
	if err != nil || got.Name != "Roses Deluxe" {
		t.Fatalf("expected latest row to win, got %+v (%v)", got, err)
	}
}
