package cards

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

//go:embed cards.csv
var catalogFile []byte

const DeckSize = 108

type Entry struct {
	Name  string
	ID    Card
	Count int
}

// Catalog is the static card table.
type Catalog struct {
	Entries []Entry
}

// ReadCatalog parses a card table with a header row followed by
// name,id,image,count rows. The image column belongs to clients and is
// skipped.
func ReadCatalog(reader io.Reader) (*Catalog, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = 4

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read card table: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("card table is empty")
	}

	catalog := Catalog{}
	for i, row := range rows[1:] {
		id, err := strconv.ParseUint(row[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid id %q", i+2, row[1])
		}

		if _, err := Classify(Card(id)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		count, err := strconv.Atoi(row[3])
		if err != nil || count < 0 {
			return nil, fmt.Errorf("row %d: invalid count %q", i+2, row[3])
		}

		catalog.Entries = append(catalog.Entries, Entry{
			Name:  row[0],
			ID:    Card(id),
			Count: count,
		})
	}

	return &catalog, nil
}

var standard *Catalog

func init() {
	catalog, err := ReadCatalog(bytes.NewReader(catalogFile))
	if err != nil {
		panic(err)
	}

	if size := len(catalog.Deck()); size != DeckSize {
		panic(fmt.Sprintf("embedded card table has %d cards", size))
	}

	standard = catalog
}

// Standard returns the embedded 108-card table.
func Standard() *Catalog {
	return standard
}

// Deck returns every physical card in the catalog, in table order.
func (c *Catalog) Deck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, entry := range c.Entries {
		for i := 0; i < entry.Count; i++ {
			deck = append(deck, entry.ID)
		}
	}
	return deck
}
