package pivot

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/shopspring/decimal"
)

// TotalsLabel is the sentinel advance id of the synthetic last row.
const TotalsLabel = "Totals"

// Header is the fixed 5-column layout every pivot CSV uses, for every funder.
var Header = []string{
	"Advance ID",
	"Merchant Name",
	"Sum of Syn Gross Amount",
	"Total Servicing Fee",
	"Sum of Syn Net Amount",
}

// Record is one normalized remittance line as a funder extractor emits it,
// before grouping.
type Record struct {
	AdvanceID    string
	MerchantName string
	Gross        float64
	Fee          float64
	Net          float64
}

// Row is one aggregated line of a pivot table.
type Row struct {
	AdvanceID    string  `json:"advance_id"`
	MerchantName string  `json:"merchant_name"`
	Gross        float64 `json:"sum_of_syn_gross_amount"`
	Fee          float64 `json:"total_servicing_fee"`
	Net          float64 `json:"sum_of_syn_net_amount"`
}

// Table is an ordered pivot: data rows plus, once AddTotalsRow has run, a
// trailing Totals row. Totals accumulate as rows are added.
type Table struct {
	Rows       []Row   `json:"rows"`
	TotalGross float64 `json:"total_gross"`
	TotalFee   float64 `json:"total_fee"`
	TotalNet   float64 `json:"total_net"`
}

func New() *Table {
	return &Table{Rows: make([]Row, 0)}
}

func (t *Table) AddRow(advanceID, merchantName string, gross, fee, net float64) {
	t.Rows = append(t.Rows, Row{
		AdvanceID:    advanceID,
		MerchantName: merchantName,
		Gross:        gross,
		Fee:          fee,
		Net:          net,
	})
	t.TotalGross += gross
	t.TotalFee += fee
	t.TotalNet += net
}

func (t *Table) AddTotalsRow() {
	t.Rows = append(t.Rows, Row{
		AdvanceID: TotalsLabel,
		Gross:     t.TotalGross,
		Fee:       t.TotalFee,
		Net:       t.TotalNet,
	})
}

// DataRowCount excludes the totals row.
func (t *Table) DataRowCount() int {
	n := 0
	for _, r := range t.Rows {
		if r.AdvanceID != TotalsLabel {
			n++
		}
	}
	return n
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// WriteCSV emits the fixed 5-column form with 2-decimal formatting.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := []string{
			row.AdvanceID,
			row.MerchantName,
			fixed2(row.Gross),
			fixed2(row.Fee),
			fixed2(row.Net),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the serialized table to path, replacing any existing file.
func (t *Table) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing pivot %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("writing pivot %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV loads a serialized pivot, skipping the Totals sentinel so the
// result can feed a merge (the merge rebuilds its own totals).
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading pivot csv: %w", err)
	}
	t := New()
	for i, rec := range records {
		if i == 0 || len(rec) < 5 {
			continue
		}
		advanceID := rec[0]
		if advanceID == TotalsLabel {
			continue
		}
		gross := parseAmount(rec[2])
		fee := parseAmount(rec[3])
		net := parseAmount(rec[4])
		t.AddRow(advanceID, rec[1], gross, fee, net)
	}
	return t, nil
}

// LoadCSV reads the pivot stored at path.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading pivot %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func parseAmount(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	v, _ := d.Float64()
	return v
}

// GroupOptions selects a funder's identity model and rounding behavior.
type GroupOptions struct {
	// ByMerchant keys groups on (advance id, merchant name) instead of the
	// advance id alone, for funders where the same id can belong to more
	// than one merchant row.
	ByMerchant bool
	// RoundCents rounds each summed value to 2 decimals before the row is
	// added, for funders whose source values are already float-imprecise.
	RoundCents bool
}

type groupKey struct {
	advanceID    string
	merchantName string
}

// FromRecords groups records per opts, sums gross/fee/net per group, orders
// groups ascending by advance id (then merchant name) and appends the totals
// row.
func FromRecords(records []Record, opts GroupOptions) *Table {
	type sums struct {
		merchantName    string
		gross, fee, net float64
	}
	grouped := make(map[groupKey]*sums)
	for _, rec := range records {
		key := groupKey{advanceID: rec.AdvanceID}
		if opts.ByMerchant {
			key.merchantName = rec.MerchantName
		}
		entry, ok := grouped[key]
		if !ok {
			entry = &sums{merchantName: rec.MerchantName}
			grouped[key] = entry
		}
		entry.gross += rec.Gross
		entry.fee += rec.Fee
		entry.net += rec.Net
	}

	keys := make([]groupKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].advanceID != keys[j].advanceID {
			return keys[i].advanceID < keys[j].advanceID
		}
		return keys[i].merchantName < keys[j].merchantName
	})

	t := New()
	for _, k := range keys {
		entry := grouped[k]
		gross, fee, net := entry.gross, entry.fee, entry.net
		if opts.RoundCents {
			gross = RoundCents(gross)
			fee = RoundCents(fee)
			net = RoundCents(net)
		}
		t.AddRow(k.advanceID, entry.merchantName, gross, fee, net)
	}
	t.AddTotalsRow()
	return t
}

// Merge unions two pivots by advance id, summing contributions from
// whichever side(s) carry the id, and rebuilds the totals row. Totals rows
// in the inputs are ignored. The first merchant name seen for an id wins.
func Merge(a, b *Table) *Table {
	type sums struct {
		merchantName    string
		gross, fee, net float64
	}
	combined := make(map[string]*sums)
	accumulate := func(t *Table) {
		for _, row := range t.Rows {
			if row.AdvanceID == TotalsLabel {
				continue
			}
			entry, ok := combined[row.AdvanceID]
			if !ok {
				entry = &sums{merchantName: row.MerchantName}
				combined[row.AdvanceID] = entry
			}
			entry.gross += row.Gross
			entry.fee += row.Fee
			entry.net += row.Net
		}
	}
	accumulate(a)
	accumulate(b)

	ids := make([]string, 0, len(combined))
	for id := range combined {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := New()
	for _, id := range ids {
		entry := combined[id]
		t.AddRow(id, entry.merchantName, entry.gross, entry.fee, entry.net)
	}
	t.AddTotalsRow()
	return t
}

// RoundCents rounds to 2 decimal places, matching the source system's
// post-summation rounding.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
