package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Merchant struct {
	ID           string  `json:"id"`
	Portfolio    string  `json:"portfolio"`
	Funder       string  `json:"funder"`
	AdvanceID    string  `json:"advance_id"`
	MerchantName string  `json:"merchant_name"`
	FundingDate  string  `json:"funding_date,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
}

// UpsertMerchants replaces the roster rows extracted from a portfolio
// workbook, keyed on portfolio, funder and advance id.
func (s *Store) UpsertMerchants(ctx context.Context, merchants []Merchant) error {
	for _, m := range merchants {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO merchants (id, portfolio, funder, advance_id, merchant_name, funding_date, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (portfolio, funder, advance_id)
			DO UPDATE SET merchant_name = EXCLUDED.merchant_name,
				funding_date = EXCLUDED.funding_date, amount = EXCLUDED.amount`,
			m.ID, m.Portfolio, m.Funder, m.AdvanceID, m.MerchantName, m.FundingDate, m.Amount)
		if err != nil {
			return fmt.Errorf("upserting merchant %s/%s: %w", m.Funder, m.AdvanceID, err)
		}
	}
	return nil
}

func (s *Store) ListMerchants(ctx context.Context, portfolio, funder string) ([]Merchant, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, portfolio, funder, advance_id, merchant_name, COALESCE(funding_date, ''), COALESCE(amount, 0)
		FROM merchants
		WHERE portfolio = $1 AND ($2 = '' OR funder = $2)
		ORDER BY funder, advance_id`, portfolio, funder)
	if err != nil {
		return nil, fmt.Errorf("listing merchants: %w", err)
	}
	defer rows.Close()

	var merchants []Merchant
	for rows.Next() {
		var m Merchant
		if err := rows.Scan(&m.ID, &m.Portfolio, &m.Funder, &m.AdvanceID, &m.MerchantName, &m.FundingDate, &m.Amount); err != nil {
			return nil, fmt.Errorf("scanning merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	return merchants, rows.Err()
}
