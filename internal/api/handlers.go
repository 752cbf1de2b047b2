package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cabinbook/internal/database"
	"cabinbook/internal/domain"
	"cabinbook/internal/models"
	"cabinbook/internal/service"
)

const (
	headerDeviceID   = "X-Device-ID"
	headerGuestPhone = "X-Guest-Phone"
)

func (s *HTTPServer) resolveIdentity(r *http.Request) (models.Identity, error) {
	deviceID := strings.TrimSpace(r.Header.Get(headerDeviceID))
	phone := strings.TrimSpace(r.Header.Get(headerGuestPhone))
	return s.identity.Resolve(r.Context(), deviceID, phone)
}

func mapServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrDayAlreadyBooked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrDayNotOpen):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleCalendar отдает снапшот месяца. Гости не видят прошлые месяцы
// и чужие контактные данные в занятых днях.
func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	identity, err := s.resolveIdentity(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	year, month := now.Year(), now.Month()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = time.Month(m)
	}

	if !identity.IsAdmin() {
		if year < now.Year() || (year == now.Year() && month < now.Month()) {
			writeError(w, http.StatusBadRequest, "past months are not available")
			return
		}
	}

	snapshot, err := s.calendar.BuildMonthSnapshot(r.Context(), year, month)
	if err != nil {
		mapServiceError(w, err)
		return
	}

	if !identity.IsAdmin() {
		snapshot = redactSnapshot(snapshot, identity)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": int(month),
		"days":  snapshot,
	})
}

// redactSnapshot скрывает детали чужих бронирований
func redactSnapshot(snapshot models.MonthSnapshot, identity models.Identity) models.MonthSnapshot {
	out := make(models.MonthSnapshot, len(snapshot))
	for date, info := range snapshot {
		if info.Booking != nil && !identity.Owns(info.Booking.GuestPhone) {
			info.Booking = nil
		}
		out[date] = info
	}
	return out
}

type bookingRequest struct {
	Date       string `json:"date"`
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`
	GuestEmail string `json:"guest_email"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	identity, err := s.resolveIdentity(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var body bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Залогиненный гость может не повторять свои данные в теле
	if identity.Guest != nil {
		if body.GuestName == "" {
			body.GuestName = identity.Guest.Name
		}
		if body.GuestPhone == "" {
			body.GuestPhone = identity.Guest.Phone
		}
		if body.GuestEmail == "" {
			body.GuestEmail = identity.Guest.Email
		}
	}

	booking, err := s.bookings.Create(r.Context(), domain.CreateBookingRequest{
		Date:       body.Date,
		GuestName:  body.GuestName,
		GuestPhone: body.GuestPhone,
		GuestEmail: body.GuestEmail,
	})
	if err != nil {
		mapServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	identity, err := s.resolveIdentity(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	booking, err := s.bookings.Get(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}

	if !identity.IsAdmin() && !identity.Owns(booking.GuestPhone) {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, booking)

	case http.MethodPut:
		var body bookingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err := s.bookings.Update(r.Context(), id, domain.UpdateBookingRequest{
			GuestName:  body.GuestName,
			GuestPhone: body.GuestPhone,
			GuestEmail: body.GuestEmail,
		})
		if err != nil {
			mapServiceError(w, err)
			return
		}
		updated, err := s.bookings.Get(r.Context(), id)
		if err != nil {
			mapServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		removed, err := s.bookings.Cancel(r.Context(), id)
		if err != nil {
			mapServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cancelled": true, "date": removed.Date})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type guestbookRequest struct {
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`
	Message    string `json:"message"`
}

func (s *HTTPServer) handleGuestbook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			var err error
			if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
		}
		entries, err := s.guestbook.List(r.Context(), limit)
		if err != nil {
			mapServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})

	case http.MethodPost:
		identity, err := s.resolveIdentity(r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var body guestbookRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if identity.Guest != nil {
			if body.GuestName == "" {
				body.GuestName = identity.Guest.Name
			}
			if body.GuestPhone == "" {
				body.GuestPhone = identity.Guest.Phone
			}
		}

		entry, err := s.guestbook.Add(r.Context(), body.GuestName, body.GuestPhone, body.Message)
		if err != nil {
			mapServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleGuestbookByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/guestbook/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	identity, err := s.resolveIdentity(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.guestbook.Delete(r.Context(), id, identity); err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *HTTPServer) handleIdentity(w http.ResponseWriter, r *http.Request) {
	deviceID := strings.TrimSpace(r.Header.Get(headerDeviceID))
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "X-Device-ID header is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := s.identity.LoadGuest(r.Context(), deviceID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, "no identity for device")
			return
		}
		writeJSON(w, http.StatusOK, record)

	case http.MethodPost:
		var record models.GuestRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.identity.SaveGuest(r.Context(), deviceID, record); err != nil {
			mapServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"saved": true})

	case http.MethodDelete:
		if err := s.identity.Logout(r.Context(), deviceID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"logged_out": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleContacts отдает телефоны администраторов для связи
func (s *HTTPServer) handleContacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	contacts := make([]map[string]string, 0, len(s.cfg.Admins))
	for _, admin := range s.cfg.Admins {
		contacts = append(contacts, map[string]string{
			"name":  admin.Name,
			"phone": models.FormatPhone(admin.Phone),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

type bulkDaysRequest struct {
	Dates []string `json:"dates"`
}

func (s *HTTPServer) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	identity, err := s.resolveIdentity(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if !identity.IsAdmin() {
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

func decodeBulkDays(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var body bulkDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if len(body.Dates) == 0 {
		writeError(w, http.StatusBadRequest, "dates is required")
		return nil, false
	}
	for _, date := range body.Dates {
		if _, err := time.Parse(models.DateFormat, date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format: "+date)
			return nil, false
		}
	}
	return body.Dates, true
}

func (s *HTTPServer) handleOpenDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	dates, ok := decodeBulkDays(w, r)
	if !ok {
		return
	}

	opened, err := s.calendar.OpenDays(r.Context(), dates)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"opened": opened})
}

func (s *HTTPServer) handleCloseDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	dates, ok := decodeBulkDays(w, r)
	if !ok {
		return
	}

	closed, skipped, err := s.calendar.CloseDays(r.Context(), dates)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"closed": closed, "skipped": skipped})
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	stats, err := s.calendar.Stats(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type exportRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	for _, date := range []string{body.From, body.To} {
		if _, err := time.Parse(models.DateFormat, date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format: "+date)
			return
		}
	}

	path, err := s.exporter.BookingsReport(r.Context(), body.From, body.To)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
