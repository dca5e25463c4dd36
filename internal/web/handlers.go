package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mkranz/sheetsync/internal/logging"
	"github.com/mkranz/sheetsync/internal/report"
	"github.com/mkranz/sheetsync/internal/source"
	"github.com/mkranz/sheetsync/internal/syncer"
	"github.com/mkranz/sheetsync/internal/tabular"
)

// defaultLessonLimit caps /lessons responses unless the caller asks for less.
const defaultLessonLimit = 200

// handleHealth returns a static OK payload.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"ok": true})
}

// syncRequest is the optional override body of a POST /sync.
// A gid override clears the configured tab name and vice versa, so the
// request always selects exactly one tab reference.
type syncRequest struct {
	SourceKind         *string `json:"source_kind"`
	AttachmentFilename *string `json:"attachment_filename"`
	SheetGID           *int64  `json:"sheet_gid"`
	SheetTabName       *string `json:"sheet_tab_name"`
}

// handleSync runs one attachment sync job in-process under the configured
// deadline. The job itself is sequential; only one job runs per request.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondBadRequest(w, r, "invalid JSON body: "+err.Error())
			return
		}
	}

	job, err := s.buildJob(req)
	if err != nil {
		respondBadRequest(w, r, err.Error())
		return
	}

	jobID := uuid.NewString()
	logger := logging.WithFields(r.Context(),
		"job_id", jobID,
		"source_kind", string(job.Source.Kind),
		"page_id", job.PageID,
	)
	logger.Info("sync job starting")

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Sync.Timeout)
	defer cancel()

	result, err := s.syncer.Run(ctx, job)
	if err != nil {
		logger.Error("sync job failed", "error", err)
		respondError(w, r, err)
		return
	}

	logger.Info("sync job finished", "outcome", result.Outcome, "bytes", result.Bytes)
	writeJSON(w, http.StatusOK, envelope{
		"ok":       true,
		"job_id":   jobID,
		"filename": result.Filename,
		"status":   string(result.Outcome),
		"bytes":    result.Bytes,
	})
}

// buildJob merges the configured sync defaults with request overrides.
func (s *Server) buildJob(req syncRequest) (syncer.Job, error) {
	cfg := s.cfg

	kindStr := cfg.Sync.SourceKind
	if req.SourceKind != nil {
		kindStr = *req.SourceKind
	}
	kind, err := source.ParseKind(kindStr)
	if err != nil {
		return syncer.Job{}, err
	}

	filename := cfg.Sync.Filename
	if req.AttachmentFilename != nil {
		filename = *req.AttachmentFilename
	}

	gid := cfg.Sheet.TabGID
	tabName := cfg.Sheet.TabName
	if req.SheetGID != nil {
		gid = *req.SheetGID
		tabName = ""
	}
	if req.SheetTabName != nil {
		tabName = *req.SheetTabName
		gid = source.GIDUnset
	}

	job := syncer.Job{
		Source: source.Request{
			Kind:          kind,
			SpreadsheetID: cfg.Sheet.SpreadsheetID,
			TabGID:        gid,
			TabName:       tabName,
			RenderOption:  cfg.Sheet.Render,
			FileID:        cfg.Sync.DriveFileID,
			ExportMIME:    cfg.Sync.ExportMIME,
			FolderID:      cfg.Sync.DriveFolderID,
			Query:         cfg.Sync.DriveQuery,
			Filename:      filename,
		},
		PageID: cfg.Sync.PageID,
		WriteBack: report.Options{
			CellRange:   cfg.Sync.WriteBackRange,
			Template:    cfg.Sync.WriteBackTemplate,
			AppendRange: cfg.Sync.AppendLogRange,
		},
	}
	if err := job.Source.Validate(); err != nil {
		return syncer.Job{}, err
	}
	if job.PageID == "" {
		return syncer.Job{}, errStr("PAGE_ID is not configured")
	}
	return job, nil
}

// errStr is a tiny helper for constant error messages.
type errStr string

func (e errStr) Error() string { return string(e) }

// handleLesson returns the records matching an exact module name + section.
func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	moduleName := r.URL.Query().Get("module_name")
	section := r.URL.Query().Get("section")
	if moduleName == "" || section == "" {
		respondBadRequest(w, r, "module_name and section query parameters are required")
		return
	}

	records, err := s.readRecords(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	mn := norm(moduleName)
	sec := norm(section)

	var matches []tabular.Record
	for _, rec := range records {
		if norm(rec.Get("Module Name")) == mn && norm(rec.Get("Section")) == sec {
			matches = append(matches, rec)
		}
	}

	writeJSON(w, http.StatusOK, envelope{
		"ok":    true,
		"count": len(matches),
		"data":  recordsPayload(matches),
	})
}

// handleLessons returns records filtered by optional module name (exact),
// section prefix, and author (exact).
func (s *Server) handleLessons(w http.ResponseWriter, r *http.Request) {
	mn := norm(r.URL.Query().Get("module_name"))
	sp := norm(r.URL.Query().Get("section_prefix"))
	au := norm(r.URL.Query().Get("author"))
	limit := parseIntParam(r, "limit", defaultLessonLimit)

	records, err := s.readRecords(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	var filtered []tabular.Record
	for _, rec := range records {
		if mn != "" && norm(rec.Get("Module Name")) != mn {
			continue
		}
		if sp != "" && !strings.HasPrefix(norm(rec.Get("Section")), sp) {
			continue
		}
		if au != "" && norm(rec.Get("author")) != au {
			continue
		}
		filtered = append(filtered, rec)
	}

	count := len(filtered)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	writeJSON(w, http.StatusOK, envelope{
		"ok":    true,
		"count": count,
		"data":  recordsPayload(filtered),
	})
}

// readRecords fetches the configured source tab and converts it to records.
func (s *Server) readRecords(ctx context.Context) ([]tabular.Record, error) {
	if s.cfg.Sheet.SpreadsheetID == "" {
		return nil, errStr("SPREADSHEET_ID is not configured")
	}

	tabName := s.cfg.Sheet.TabName
	if tabName == "" {
		title, err := s.sheets.TabTitle(ctx, s.cfg.Sheet.SpreadsheetID, s.cfg.Sheet.TabGID)
		if err != nil {
			return nil, err
		}
		tabName = title
	}

	values, err := s.sheets.Values(ctx, s.cfg.Sheet.SpreadsheetID, tabName, s.cfg.Sheet.Render)
	if err != nil {
		return nil, err
	}
	return tabular.Records(tabular.Grid(values)), nil
}

// recordsPayload keeps the JSON shape stable: an empty match list serializes
// as [] rather than null.
func recordsPayload(recs []tabular.Record) []tabular.Record {
	if recs == nil {
		return []tabular.Record{}
	}
	return recs
}

// norm lower-cases and trims a filter value for comparison.
func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseIntParam parses an integer query parameter with a default value.
// Unparsable values fall back to the default; parsed values below 1 clamp
// to 1, so limit=0 returns one record rather than the default page size.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	if i < 1 {
		return 1
	}
	return i
}
