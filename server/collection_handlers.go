package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/docstore"
	"github.com/matteuzdev/VerbAI-Studio/leads"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
)

type savedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ListContentsHandler lists contents newest first, filtered by ?type=.
func (s *Server) ListContentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.docs.ListContents(tenantFromContext(r.Context()), r.URL.Query().Get("type"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) UpsertContentHandler() http.HandlerFunc {
	return s.upsertHandler(persistence.SegmentContents, "Created", "Updated")
}

func (s *Server) DeleteContentHandler() http.HandlerFunc {
	return s.deleteHandler(persistence.SegmentContents, "Deleted")
}

func (s *Server) ListTermsHandler() http.HandlerFunc {
	return s.listHandler(persistence.SegmentTerms)
}

func (s *Server) UpsertTermHandler() http.HandlerFunc {
	return s.upsertHandler(persistence.SegmentTerms, "Term Saved", "Term Saved")
}

func (s *Server) DeleteTermHandler() http.HandlerFunc {
	return s.deleteHandler(persistence.SegmentTerms, "Term Deleted")
}

func (s *Server) ListLeadsHandler() http.HandlerFunc {
	return s.listHandler(persistence.SegmentLeads)
}

// UpsertLeadHandler saves a lead. Leads posted without a status or source
// get the contact form defaults.
func (s *Server) UpsertLeadHandler() http.HandlerFunc {
	return s.upsertHandler(persistence.SegmentLeads, "Lead Saved", "Lead Saved")
}

func (s *Server) DeleteLeadHandler() http.HandlerFunc {
	return s.deleteHandler(persistence.SegmentLeads, "Lead Deleted")
}

// ExportLeadsHandler downloads the tenant's leads as CSV (default) or XLSX.
func (s *Server) ExportLeadsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := tenantFromContext(r.Context())
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "csv"
		}
		if format != "csv" && format != "xlsx" {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
			return
		}

		items, err := s.docs.Leads(tenantID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leads-%s.%s"`, tenantID, format))
		if format == "xlsx" {
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			err = leads.WriteXLSX(w, items)
		} else {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			err = leads.WriteCSV(w, items)
		}
		if err != nil {
			// Headers are already out; all that is left is to log.
			logError(r.Method, r.URL.Path, err.Error())
		}
	}
}

func (s *Server) listHandler(segment persistence.Segment) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.docs.List(tenantFromContext(r.Context()), segment)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) upsertHandler(segment persistence.Segment, createdMsg, updatedMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec docstore.Record
		if !decodeBody(w, r, &rec) {
			return
		}
		if rec == nil {
			writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if segment == persistence.SegmentLeads {
			setDefault(rec, "status", string(leads.StatusNew))
			setDefault(rec, "source", "Website")
			setDefault(rec, "createdAt", s.nowTime().UTC().Format(time.RFC3339Nano))
		}

		id, created, err := s.docs.Upsert(tenantFromContext(r.Context()), segment, rec)
		if err != nil {
			writeError(w, r, err)
			return
		}
		msg := updatedMsg
		if created {
			msg = createdMsg
		}
		writeJSON(w, http.StatusOK, savedResponse{Message: msg, ID: id})
	}
}

func (s *Server) deleteHandler(segment persistence.Segment, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.docs.Delete(tenantFromContext(r.Context()), segment, r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, savedResponse{Message: msg})
	}
}

func setDefault(rec docstore.Record, key, value string) {
	if v, ok := rec[key].(string); !ok || v == "" {
		rec[key] = value
	}
}
