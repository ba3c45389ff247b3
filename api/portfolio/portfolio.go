package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"Excelerate/internal/config"
	"Excelerate/internal/directories"
	"Excelerate/internal/logger"
	"Excelerate/internal/notification"
	"Excelerate/internal/store"
)

type Deps struct {
	Store    *store.Store
	Dirs     directories.Layout
	Notifier *notification.Service
}

func StartPortfolioService(deps *Deps) {
	r := mux.NewRouter()
	r.HandleFunc("/portfolio/workbook", SaveWorkbook(deps)).Methods("POST")
	r.HandleFunc("/portfolio/workbook/versions", ListWorkbookVersions(deps)).Methods("GET")
	r.HandleFunc("/portfolio/workbook/restore", RestoreWorkbookVersion(deps)).Methods("POST")
	r.HandleFunc("/portfolio/merchants", ListMerchants(deps)).Methods("GET")

	log.Println("Portfolio Service started on :7343")
	if err := http.ListenAndServe(":7343", r); err != nil {
		log.Fatalf("Portfolio Service failed: %v", err)
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

func audit(msg string) {
	if logr := logger.GlobalLogger; logr != nil {
		logr.LogAudit(msg)
	} else {
		log.Println(msg)
	}
}

// SaveWorkbook stores a new portfolio workbook version, makes it active and
// refreshes the merchant roster from its funder sheets. Earlier versions
// stay on disk for restore.
func SaveWorkbook(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		portfolio := r.FormValue("portfolio")
		if !config.ValidPortfolio(portfolio) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown portfolio %q", portfolio))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		fileName := filepath.Base(header.Filename)
		dir := deps.Dirs.WorkbookDir(portfolio)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		stamp := time.Now().Format("20060102-150405")
		destPath := filepath.Join(dir, stamp+"-"+fileName)
		out, err := os.Create(destPath)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := io.Copy(out, file); err != nil {
			out.Close()
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := out.Close(); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		versionID, err := deps.Store.InsertFileVersion(ctx, store.FileVersion{
			Portfolio: portfolio,
			FileName:  fileName,
			FilePath:  destPath,
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := map[string]interface{}{"success": true, "version_id": versionID}
		merchants, err := ExtractMerchants(portfolio, destPath)
		if err != nil {
			deps.Notifier.Push(notification.Warning(
				"Merchant extraction failed",
				fmt.Sprintf("%s was saved, but merchants could not be read: %v", fileName, err),
			))
			resp["merchants_updated"] = false
			respondJSON(w, http.StatusOK, resp)
			return
		}
		if err := deps.Store.UpsertMerchants(ctx, merchants); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		deps.Notifier.Push(notification.Success(
			fmt.Sprintf("Workbook saved: %s", fileName),
			fmt.Sprintf("%d merchants updated.", len(merchants)),
		))
		audit(fmt.Sprintf("[Portfolio] Saved workbook %s for %s, %d merchants", fileName, portfolio, len(merchants)))
		resp["merchants_updated"] = true
		resp["merchant_count"] = len(merchants)
		respondJSON(w, http.StatusOK, resp)
	}
}

func ListWorkbookVersions(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := r.URL.Query().Get("portfolio")
		fileName := r.URL.Query().Get("file_name")
		if portfolio == "" || fileName == "" {
			respondError(w, http.StatusBadRequest, "portfolio and file_name query parameters required")
			return
		}
		versions, err := deps.Store.ListFileVersions(r.Context(), portfolio, fileName)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "versions": versions})
	}
}

// RestoreWorkbookVersion makes an older version active again and re-extracts
// merchants from it.
func RestoreWorkbookVersion(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			VersionID string `json:"version_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VersionID == "" {
			respondError(w, http.StatusBadRequest, "version_id required in body")
			return
		}

		v, err := deps.Store.SetActiveVersion(ctx, req.VersionID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "version not found")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := map[string]interface{}{"success": true, "version": v}
		merchants, err := ExtractMerchants(v.Portfolio, v.FilePath)
		if err != nil {
			deps.Notifier.Push(notification.Warning(
				"Merchant extraction failed",
				fmt.Sprintf("Version %d was restored, but merchants could not be read: %v", v.Version, err),
			))
			resp["merchants_updated"] = false
			respondJSON(w, http.StatusOK, resp)
			return
		}
		if err := deps.Store.UpsertMerchants(ctx, merchants); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		deps.Notifier.Push(notification.Success(
			fmt.Sprintf("Workbook restored: %s", v.FileName),
			fmt.Sprintf("Version %d is now active.", v.Version),
		))
		audit(fmt.Sprintf("[Portfolio] Restored workbook %s version %d for %s", v.FileName, v.Version, v.Portfolio))
		resp["merchants_updated"] = true
		respondJSON(w, http.StatusOK, resp)
	}
}

func ListMerchants(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := r.URL.Query().Get("portfolio")
		if portfolio == "" {
			respondError(w, http.StatusBadRequest, "portfolio query parameter required")
			return
		}
		merchants, err := deps.Store.ListMerchants(r.Context(), portfolio, r.URL.Query().Get("funder"))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "merchants": merchants})
	}
}
