package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"banyabot/internal/domain"
	"banyabot/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func (s *HTTPServer) handleCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.catalog.GetActiveCities(r.Context())
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

func (s *HTTPServer) handleBanyas(w http.ResponseWriter, r *http.Request) {
	cityID, err := queryInt64(r, "city_id")
	if err != nil || cityID == 0 {
		writeError(w, http.StatusBadRequest, "city_id is required")
		return
	}

	banyas, err := s.catalog.SearchBanyas(r.Context(), cityID)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"banyas": banyas})
}

func (s *HTTPServer) handleBanya(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid banya id")
		return
	}

	banya, err := s.catalog.GetBanyaByID(r.Context(), id)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}

	// Фотографии не критичны для карточки, ошибку глотаем.
	photos, _ := s.catalog.GetBanyaPhotos(r.Context(), id)

	writeJSON(w, http.StatusOK, map[string]any{"banya": banya, "photos": photos})
}

func (s *HTTPServer) handleBanyaMasters(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid banya id")
		return
	}

	if _, err := s.catalog.GetBanyaByID(r.Context(), id); err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}

	masters, err := s.catalog.GetMastersByBanya(r.Context(), id)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"masters": masters})
}

func (s *HTTPServer) handleBanyaReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid banya id")
		return
	}

	reviews, err := s.reviews.GetBanyaReviews(r.Context(), id, queryLimit(r, 20))
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *HTTPServer) handleMasters(w http.ResponseWriter, r *http.Request) {
	masters, err := s.catalog.GetAvailableMasters(r.Context())
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"masters": masters})
}

func (s *HTTPServer) handleMaster(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid master id")
		return
	}

	master, err := s.catalog.GetBathMasterByID(r.Context(), id)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"master": master})
}

func (s *HTTPServer) handleMasterReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid master id")
		return
	}

	reviews, err := s.reviews.GetMasterReviews(r.Context(), id, queryLimit(r, 20))
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// handleAvailability отдаёт свободные часы начала на дату. Баню и мастера
// можно запрашивать по отдельности или вместе, тогда слоты пересекаются.
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var banyaID, masterID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("banya_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid banya_id")
			return
		}
		banyaID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("master_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid master_id")
			return
		}
		masterID = &id
	}
	if banyaID == nil && masterID == nil {
		writeError(w, http.StatusBadRequest, "banya_id or master_id is required")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	duration := 2
	if raw := strings.TrimSpace(r.URL.Query().Get("duration")); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration < 1 {
			writeError(w, http.StatusBadRequest, "invalid duration")
			return
		}
	}

	slots, err := s.availability.GetAvailableSlots(r.Context(), banyaID, masterID, date, duration)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	if slots == nil {
		slots = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":           dateStr,
		"duration_hours": duration,
		"slots":          slots,
	})
}

type createBookingRequest struct {
	TelegramID    int64  `json:"telegram_id"`
	BanyaID       *int64 `json:"banya_id"`
	BathMasterID  *int64 `json:"bath_master_id"`
	BookingType   string `json:"booking_type"`
	Date          string `json:"date"`
	StartHour     int    `json:"start_hour"`
	DurationHours int    `json:"duration_hours"`
	GuestsCount   int    `json:"guests_count"`
	ClientAddress string `json:"client_address"`
	UserNotes     string `json:"user_notes"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, ok := s.resolveUser(w, r, req.TelegramID)
	if !ok {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), domain.CreateBookingInput{
		UserID:        user.ID,
		BanyaID:       req.BanyaID,
		BathMasterID:  req.BathMasterID,
		BookingType:   req.BookingType,
		Date:          date,
		StartHour:     req.StartHour,
		DurationHours: req.DurationHours,
		GuestsCount:   req.GuestsCount,
		ClientAddress: req.ClientAddress,
		UserNotes:     req.UserNotes,
	})
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"booking": booking})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

type confirmBookingRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Party      string `json:"party"`
}

func (s *HTTPServer) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req confirmBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, ok := s.resolveUser(w, r, req.TelegramID)
	if !ok {
		return
	}
	actor := domain.Actor{UserID: user.ID, IsAdmin: s.users.IsAdmin(req.TelegramID)}

	var booking *models.Booking
	switch req.Party {
	case "client":
		booking, err = s.bookings.ClientConfirm(r.Context(), id, actor)
	case "banya":
		booking, err = s.bookings.BanyaConfirm(r.Context(), id, actor)
	case "master":
		booking, err = s.bookings.MasterConfirm(r.Context(), id, actor)
	default:
		writeError(w, http.StatusBadRequest, "party must be one of: client, banya, master")
		return
	}
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

type cancelBookingRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Reason     string `json:"reason"`
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, ok := s.resolveUser(w, r, req.TelegramID)
	if !ok {
		return
	}
	actor := domain.Actor{UserID: user.ID, IsAdmin: s.users.IsAdmin(req.TelegramID)}

	booking, err := s.bookings.CancelBooking(r.Context(), id, actor, req.Reason)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}

func (s *HTTPServer) handleUserBookings(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(chi.URLParam(r, "telegram_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid telegram id")
		return
	}

	user, err := s.users.GetUserByTelegramID(r.Context(), telegramID)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}

	bookings, err := s.bookings.GetUserBookings(r.Context(), user.ID)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

type createReviewRequest struct {
	TelegramID int64  `json:"telegram_id"`
	BookingID  int64  `json:"booking_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

func (s *HTTPServer) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, ok := s.resolveUser(w, r, req.TelegramID)
	if !ok {
		return
	}

	review, err := s.reviews.CreateReview(r.Context(), &models.Review{
		BookingID: req.BookingID,
		UserID:    user.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"review": review})
}

// resolveUser находит пользователя по telegram_id из тела запроса.
// false: ответ уже записан.
func (s *HTTPServer) resolveUser(w http.ResponseWriter, r *http.Request, telegramID int64) (*models.User, bool) {
	if telegramID == 0 {
		writeError(w, http.StatusBadRequest, "telegram_id is required")
		return nil, false
	}
	user, err := s.users.GetUserByTelegramID(r.Context(), telegramID)
	if err != nil {
		writeDomainError(zerolog.Ctx(r.Context()), w, err)
		return nil, false
	}
	return user, true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, name)), 10, 64)
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func queryLimit(r *http.Request, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 100 {
		return def
	}
	return n
}
