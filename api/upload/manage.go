package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"Excelerate/api/clearview"
	"Excelerate/api/pivot"
	"Excelerate/internal/directories"
	"Excelerate/internal/notification"
	"Excelerate/internal/store"
)

// DeleteUpload removes an uploaded file and tears down or rebuilds whatever
// pivots depended on it. For Clear View the cascade depends on which side of
// the week the file fed: the last daily file takes the daily and combined
// pivots with it, while removing the weekly report keeps the daily pivot.
func DeleteUpload(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UploadID string `json:"upload_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UploadID == "" {
			respondError(w, http.StatusBadRequest, "upload_id required in body")
			return
		}

		u, err := deps.Store.GetFunderUpload(ctx, req.UploadID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "upload not found")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if u.Funder == clearViewFunder {
			err = deleteClearViewUpload(ctx, deps, u)
		} else {
			err = deleteFunderUpload(ctx, deps, u)
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if err := deps.Store.DeleteFunderUpload(ctx, u.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		deps.Notifier.Push(notification.Info(
			fmt.Sprintf("File removed: %s", u.FileName),
			"Dependent pivot tables were updated.",
		))
		audit(fmt.Sprintf("[Upload] Deleted %s (%s/%s)", u.FileName, u.Portfolio, u.Funder))
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

func deleteFunderUpload(ctx context.Context, deps *Deps, u store.FunderUpload) error {
	if err := os.Remove(u.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing upload file: %w", err)
	}
	pivotPath := deps.Dirs.FunderPivotPath(u.Portfolio, u.Funder, u.ReportDate)
	if err := os.Remove(pivotPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing pivot file: %w", err)
	}
	return deps.Store.DeletePivot(ctx, u.Portfolio, u.Funder, u.ReportDate, store.PivotWeekly)
}

func deleteClearViewUpload(ctx context.Context, deps *Deps, u store.FunderUpload) error {
	weekStart, err := clearview.WeekStart(u.ReportDate)
	if err != nil {
		return err
	}

	if u.UploadType == store.UploadDaily {
		if err := deps.Reconciler.RemoveDailyFile(u.Portfolio, u.ReportDate, u.FileName); err != nil {
			return err
		}
		return syncClearViewMetadata(ctx, deps, u.Portfolio, weekStart)
	}

	if err := os.Remove(u.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing upload file: %w", err)
	}
	if err := deps.Reconciler.RemoveWeeklyPivot(u.Portfolio, weekStart); err != nil {
		return err
	}
	return syncClearViewMetadata(ctx, deps, u.Portfolio, weekStart)
}

// syncClearViewMetadata reconciles the store's pivot rows with what is left
// on disk after a cascade.
func syncClearViewMetadata(ctx context.Context, deps *Deps, portfolio, weekStart string) error {
	kinds := map[directories.ClearViewKind]string{
		directories.ClearViewDaily:    store.PivotDailyAggregated,
		directories.ClearViewWeekly:   store.PivotWeekly,
		directories.ClearViewCombined: store.PivotCombined,
	}
	for kind, uploadType := range kinds {
		path := deps.Dirs.ClearViewPivotPath(portfolio, kind, weekStart)
		table, err := pivot.LoadCSV(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				if err := deps.Store.DeletePivot(ctx, portfolio, clearViewFunder, weekStart, uploadType); err != nil {
					return err
				}
				continue
			}
			return err
		}
		if _, err := deps.Store.UpsertPivot(ctx, store.PivotRecord{
			Portfolio:  portfolio,
			Funder:     clearViewFunder,
			ReportDate: weekStart,
			UploadType: uploadType,
			FilePath:   path,
			TotalGross: table.TotalGross,
			TotalFee:   table.TotalFee,
			TotalNet:   table.TotalNet,
			RowCount:   table.DataRowCount(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func ListUploads(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := r.URL.Query().Get("portfolio")
		if portfolio == "" {
			respondError(w, http.StatusBadRequest, "portfolio query parameter required")
			return
		}
		uploads, err := deps.Store.ListFunderUploads(r.Context(), portfolio, r.URL.Query().Get("funder"))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "uploads": uploads})
	}
}

func ListPivots(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := r.URL.Query().Get("portfolio")
		if portfolio == "" {
			respondError(w, http.StatusBadRequest, "portfolio query parameter required")
			return
		}
		pivots, err := deps.Store.ListPivots(r.Context(), portfolio, r.URL.Query().Get("funder"))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "pivots": pivots})
	}
}

func ListNotifications(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"notifications": deps.Notifier.Notifications(),
		})
	}
}

func ClearNotifications(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Notifier.Clear()
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}
