package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"Excelerate/api/clearview"
	"Excelerate/api/funder"
	"Excelerate/api/pivot"
	"Excelerate/internal/config"
	"Excelerate/internal/directories"
	"Excelerate/internal/logger"
	"Excelerate/internal/notification"
	"Excelerate/internal/store"
)

const clearViewFunder = "Clear View"

type Deps struct {
	Store      *store.Store
	Dirs       directories.Layout
	Notifier   *notification.Service
	Reconciler *clearview.Reconciler
}

func StartUploadService(deps *Deps) {
	r := mux.NewRouter()
	r.HandleFunc("/upload/funder", UploadFunderFile(deps)).Methods("POST")
	r.HandleFunc("/upload/clearview/daily", UploadClearViewDaily(deps)).Methods("POST")
	r.HandleFunc("/upload/clearview/weekly", UploadClearViewWeekly(deps)).Methods("POST")
	r.HandleFunc("/upload/delete", DeleteUpload(deps)).Methods("POST")
	r.HandleFunc("/upload/list", ListUploads(deps)).Methods("GET")
	r.HandleFunc("/upload/pivots", ListPivots(deps)).Methods("GET")
	r.HandleFunc("/upload/notifications", ListNotifications(deps)).Methods("GET")
	r.HandleFunc("/upload/notifications/clear", ClearNotifications(deps)).Methods("POST")

	log.Println("Upload Service started on :7243")
	if err := http.ListenAndServe(":7243", r); err != nil {
		log.Fatalf("Upload Service failed: %v", err)
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

// saveTemp spools an uploaded file to a scratch copy, keeping the original
// extension so format sniffing still works.
func saveTemp(file multipart.File, name string) (string, error) {
	tmp, err := os.CreateTemp("", config.TempFilePrefix+"*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return tmp.Name(), nil
}

// moveFile renames when possible and falls back to copy for cross-device
// moves out of the temp directory.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("moving %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("moving %s: %w", src, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("moving %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("moving %s: %w", src, err)
	}
	return os.Remove(src)
}

type uploadForm struct {
	portfolio  string
	funderName string
	reportDate string
	fileName   string
	tempPath   string
}

func parseUploadForm(r *http.Request, needFunder bool) (*uploadForm, error) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		return nil, fmt.Errorf("invalid multipart form")
	}
	form := &uploadForm{
		portfolio:  r.FormValue("portfolio"),
		funderName: r.FormValue("funder"),
		reportDate: r.FormValue("report_date"),
	}
	if !config.ValidPortfolio(form.portfolio) {
		return nil, fmt.Errorf("unknown portfolio %q", form.portfolio)
	}
	if needFunder && form.funderName == "" {
		return nil, fmt.Errorf("funder is required")
	}
	if form.reportDate == "" {
		return nil, fmt.Errorf("report_date is required")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file is required")
	}
	defer file.Close()
	form.fileName = filepath.Base(header.Filename)
	form.tempPath, err = saveTemp(file, form.fileName)
	if err != nil {
		return nil, err
	}
	return form, nil
}

// UploadFunderFile handles validated report uploads for the flat-file
// funders. Validation failure rejects the upload; a pivot generation failure
// after a valid upload keeps the file and surfaces a warning instead.
func UploadFunderFile(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form, err := parseUploadForm(r, true)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer os.Remove(form.tempPath)

		fd, ok := funder.Lookup(form.funderName)
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown funder %q", form.funderName))
			return
		}

		result := fd.Validate(form.tempPath)
		if !result.IsValid {
			deps.Notifier.Push(result.ToNotification(form.fileName))
			audit(fmt.Sprintf("[Upload] Rejected %s for %s/%s: validation failed", form.fileName, form.portfolio, fd.Name))
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"success":    false,
				"validation": result,
			})
			return
		}

		destPath := filepath.Join(deps.Dirs.FunderUploadDir(form.portfolio, fd.Name), form.fileName)
		if err := moveFile(form.tempPath, destPath); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		uploadID, err := deps.Store.UpsertFunderUpload(ctx, store.FunderUpload{
			Portfolio:  form.portfolio,
			Funder:     fd.Name,
			ReportDate: form.reportDate,
			UploadType: store.UploadWeekly,
			FileName:   form.fileName,
			FilePath:   destPath,
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := map[string]interface{}{"success": true, "upload_id": uploadID}
		table, err := fd.Process(form.portfolio, destPath)
		if err != nil {
			deps.Notifier.Push(notification.Warning(
				"Pivot generation failed",
				fmt.Sprintf("%s was uploaded, but its pivot could not be generated: %v", form.fileName, err),
			))
			audit(fmt.Sprintf("[Upload] Pivot generation failed for %s: %v", destPath, err))
			resp["pivot_generated"] = false
			respondJSON(w, http.StatusOK, resp)
			return
		}

		pivotPath := deps.Dirs.FunderPivotPath(form.portfolio, fd.Name, form.reportDate)
		if err := os.MkdirAll(filepath.Dir(pivotPath), 0o755); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := table.SaveCSV(pivotPath); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := deps.Store.UpsertPivot(ctx, store.PivotRecord{
			UploadID:   uploadID,
			Portfolio:  form.portfolio,
			Funder:     fd.Name,
			ReportDate: form.reportDate,
			UploadType: store.PivotWeekly,
			FilePath:   pivotPath,
			TotalGross: table.TotalGross,
			TotalFee:   table.TotalFee,
			TotalNet:   table.TotalNet,
			RowCount:   table.DataRowCount(),
		}); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		deps.Notifier.Push(notification.Success(
			fmt.Sprintf("File uploaded: %s", form.fileName),
			fmt.Sprintf("Pivot table generated for %s.", fd.Name),
		))
		audit(fmt.Sprintf("[Upload] Stored %s for %s/%s, pivot at %s", form.fileName, form.portfolio, fd.Name, pivotPath))
		resp["pivot_generated"] = true
		resp["pivot_path"] = pivotPath
		respondJSON(w, http.StatusOK, resp)
	}
}

// UploadClearViewDaily adds one daily file to its week's pool and rebuilds
// the daily pivot from the whole pool.
func UploadClearViewDaily(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form, err := parseUploadForm(r, false)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer os.Remove(form.tempPath)

		result := clearview.ValidateDaily(form.tempPath)
		if !result.IsValid {
			deps.Notifier.Push(result.ToNotification(form.fileName))
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"success":    false,
				"validation": result,
			})
			return
		}

		destPath := filepath.Join(deps.Dirs.ClearViewDailyUploadDir(form.portfolio, form.reportDate), form.fileName)
		if err := moveFile(form.tempPath, destPath); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		uploadID, err := deps.Store.UpsertFunderUpload(ctx, store.FunderUpload{
			Portfolio:  form.portfolio,
			Funder:     clearViewFunder,
			ReportDate: form.reportDate,
			UploadType: store.UploadDaily,
			FileName:   form.fileName,
			FilePath:   destPath,
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		table, err := deps.Reconciler.RebuildDailyPivot(form.portfolio, form.reportDate)
		if err != nil {
			deps.Notifier.Push(notification.Warning(
				"Pivot generation failed",
				fmt.Sprintf("%s was uploaded, but the daily pivot could not be rebuilt: %v", form.fileName, err),
			))
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true, "upload_id": uploadID, "pivot_generated": false,
			})
			return
		}

		weekStart, err := clearview.WeekStart(form.reportDate)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := recordClearViewPivots(ctx, deps, form.portfolio, weekStart, uploadID, table); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		deps.Notifier.Push(notification.Success(
			fmt.Sprintf("File uploaded: %s", form.fileName),
			fmt.Sprintf("Daily pivot rebuilt for week of %s.", weekStart),
		))
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true, "upload_id": uploadID, "pivot_generated": true, "week_start": weekStart,
		})
	}
}

// UploadClearViewWeekly stores the week's settlement report and builds the
// weekly pivot, which completes the week when daily files are present.
func UploadClearViewWeekly(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form, err := parseUploadForm(r, false)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer os.Remove(form.tempPath)

		result := clearview.ValidateWeekly(form.tempPath)
		if !result.IsValid {
			deps.Notifier.Push(result.ToNotification(form.fileName))
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"success":    false,
				"validation": result,
			})
			return
		}

		destPath := filepath.Join(deps.Dirs.ClearViewWeeklyUploadDir(form.portfolio), form.fileName)
		if err := moveFile(form.tempPath, destPath); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		uploadID, err := deps.Store.UpsertFunderUpload(ctx, store.FunderUpload{
			Portfolio:  form.portfolio,
			Funder:     clearViewFunder,
			ReportDate: form.reportDate,
			UploadType: store.UploadWeekly,
			FileName:   form.fileName,
			FilePath:   destPath,
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		weekStart, err := clearview.WeekStart(form.reportDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		table, err := deps.Reconciler.BuildWeeklyPivot(form.portfolio, form.reportDate, destPath)
		if err != nil {
			deps.Notifier.Push(notification.Warning(
				"Pivot generation failed",
				fmt.Sprintf("%s was uploaded, but the weekly pivot could not be generated: %v", form.fileName, err),
			))
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true, "upload_id": uploadID, "pivot_generated": false,
			})
			return
		}

		if _, err := deps.Store.UpsertPivot(ctx, store.PivotRecord{
			UploadID:   uploadID,
			Portfolio:  form.portfolio,
			Funder:     clearViewFunder,
			ReportDate: weekStart,
			UploadType: store.PivotWeekly,
			FilePath:   deps.Dirs.ClearViewPivotPath(form.portfolio, directories.ClearViewWeekly, weekStart),
			TotalGross: table.TotalGross,
			TotalFee:   table.TotalFee,
			TotalNet:   table.TotalNet,
			RowCount:   table.DataRowCount(),
		}); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := recordCombinedPivot(ctx, deps, form.portfolio, weekStart); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		deps.Notifier.Push(notification.Success(
			fmt.Sprintf("File uploaded: %s", form.fileName),
			fmt.Sprintf("Weekly pivot generated for week of %s.", weekStart),
		))
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true, "upload_id": uploadID, "pivot_generated": true, "week_start": weekStart,
		})
	}
}

// recordClearViewPivots records the rebuilt daily pivot and, when the week
// is complete, the combined pivot.
func recordClearViewPivots(ctx context.Context, deps *Deps, portfolio, weekStart, uploadID string, daily *pivot.Table) error {
	if _, err := deps.Store.UpsertPivot(ctx, store.PivotRecord{
		UploadID:   uploadID,
		Portfolio:  portfolio,
		Funder:     clearViewFunder,
		ReportDate: weekStart,
		UploadType: store.PivotDailyAggregated,
		FilePath:   deps.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewDaily, weekStart),
		TotalGross: daily.TotalGross,
		TotalFee:   daily.TotalFee,
		TotalNet:   daily.TotalNet,
		RowCount:   daily.DataRowCount(),
	}); err != nil {
		return err
	}
	return recordCombinedPivot(ctx, deps, portfolio, weekStart)
}

// recordCombinedPivot refreshes combined pivot metadata from disk state: the
// record exists exactly when the combined pivot file does.
func recordCombinedPivot(ctx context.Context, deps *Deps, portfolio, weekStart string) error {
	combined, err := deps.Reconciler.UpdateCombinedPivot(portfolio, weekStart)
	if err != nil {
		return err
	}
	if combined == nil {
		return deps.Store.DeletePivot(ctx, portfolio, clearViewFunder, weekStart, store.PivotCombined)
	}
	_, err = deps.Store.UpsertPivot(ctx, store.PivotRecord{
		Portfolio:  portfolio,
		Funder:     clearViewFunder,
		ReportDate: weekStart,
		UploadType: store.PivotCombined,
		FilePath:   deps.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewCombined, weekStart),
		TotalGross: combined.TotalGross,
		TotalFee:   combined.TotalFee,
		TotalNet:   combined.TotalNet,
		RowCount:   combined.DataRowCount(),
	})
	return err
}
