package dash

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
)

func StartDashService(db *sql.DB) {
	r := mux.NewRouter()
	r.HandleFunc("/dash/coverage", FunderCoverage(db)).Methods("GET")
	r.HandleFunc("/dash/totals", FunderTotals(db)).Methods("GET")
	r.HandleFunc("/dash/weeks", ReportWeeks(db)).Methods("GET")

	log.Println("Dash Service started on :7443")
	if err := http.ListenAndServe(":7443", r); err != nil {
		log.Fatalf("Dash Service failed: %v", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}

type coverageRow struct {
	Funder      string `json:"funder"`
	UploadCount int    `json:"upload_count"`
	PivotCount  int    `json:"pivot_count"`
	LatestDate  string `json:"latest_report_date,omitempty"`
}

// FunderCoverage reports, per funder, how many files were uploaded and how
// many pivots exist for a portfolio. A funder with uploads but no pivots is
// one whose reports all failed pivot generation.
func FunderCoverage(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := r.URL.Query().Get("portfolio")
		if portfolio == "" {
			respondError(w, http.StatusBadRequest, "portfolio query parameter required")
			return
		}
		rows, err := db.QueryContext(r.Context(), `
			SELECT u.funder,
				COUNT(DISTINCT u.id) AS upload_count,
				COUNT(DISTINCT p.id) AS pivot_count,
				COALESCE(MAX(u.report_date), '') AS latest_report_date
			FROM funder_uploads u
			LEFT JOIN funder_pivot_tables p
				ON p.portfolio = u.portfolio AND p.funder = u.funder
			WHERE u.portfolio = $1
			GROUP BY u.funder
			ORDER BY u.funder`, portfolio)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		var coverage []coverageRow
		for rows.Next() {
			var c coverageRow
			if err := rows.Scan(&c.Funder, &c.UploadCount, &c.PivotCount, &c.LatestDate); err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			coverage = append(coverage, c)
		}
		if err := rows.Err(); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "coverage": coverage})
	}
}

type totalsRow struct {
	Funder     string  `json:"funder"`
	UploadType string  `json:"upload_type"`
	TotalGross float64 `json:"total_gross"`
	TotalFee   float64 `json:"total_fee"`
	TotalNet   float64 `json:"total_net"`
	PivotCount int     `json:"pivot_count"`
}

// FunderTotals sums pivot totals per funder and pivot type for a portfolio.
func FunderTotals(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := r.URL.Query().Get("portfolio")
		if portfolio == "" {
			respondError(w, http.StatusBadRequest, "portfolio query parameter required")
			return
		}
		rows, err := db.QueryContext(r.Context(), `
			SELECT funder, upload_type,
				SUM(total_gross), SUM(total_fee), SUM(total_net), COUNT(*)
			FROM funder_pivot_tables
			WHERE portfolio = $1
			GROUP BY funder, upload_type
			ORDER BY funder, upload_type`, portfolio)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		var totals []totalsRow
		for rows.Next() {
			var t totalsRow
			if err := rows.Scan(&t.Funder, &t.UploadType, &t.TotalGross, &t.TotalFee, &t.TotalNet, &t.PivotCount); err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			totals = append(totals, t)
		}
		if err := rows.Err(); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "totals": totals})
	}
}

type weekRow struct {
	ReportDate string   `json:"report_date"`
	PivotTypes []string `json:"pivot_types"`
}

// ReportWeeks lists the report weeks on record for one funder, with the
// pivot stages each week has reached.
func ReportWeeks(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := r.URL.Query().Get("portfolio")
		funder := r.URL.Query().Get("funder")
		if portfolio == "" || funder == "" {
			respondError(w, http.StatusBadRequest, "portfolio and funder query parameters required")
			return
		}
		rows, err := db.QueryContext(r.Context(), `
			SELECT report_date, ARRAY_AGG(upload_type ORDER BY upload_type)
			FROM funder_pivot_tables
			WHERE portfolio = $1 AND funder = $2
			GROUP BY report_date
			ORDER BY report_date DESC`, portfolio, funder)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		var weeks []weekRow
		for rows.Next() {
			var wk weekRow
			if err := rows.Scan(&wk.ReportDate, pq.Array(&wk.PivotTypes)); err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			weeks = append(weeks, wk)
		}
		if err := rows.Err(); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "weeks": weeks})
	}
}
