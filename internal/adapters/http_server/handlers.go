package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
	"hbnb_web/internal/session"
	"hbnb_web/internal/view"
)

const maxUpload = 32 << 20

// Handlers serves the pages. Journal may be nil.
type Handlers struct {
	Queries  *app.QueryService
	Places   *app.PlaceWorkflow
	Accounts *app.AccountService
	Reviews  *app.ReviewService
	Journal  domain.Journal

	pages *renderer
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) error {
	pages, err := newRenderer()
	if err != nil {
		return err
	}
	h.pages = pages

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/", h.home)
	s.mux.Get("/place/{id}", h.placeDetail)
	s.mux.Get("/places/new", h.newPlaceForm)
	s.mux.Post("/places/new", h.createPlace)
	s.mux.Get("/place/{id}/edit", h.editPlaceForm)
	s.mux.Post("/place/{id}/edit", h.updatePlace)
	s.mux.Post("/place/{id}/delete", h.deletePlace)
	s.mux.Post("/place/{id}/reviews", h.createReview)
	s.mux.Post("/place/{id}/reviews/{rid}/delete", h.deleteReview)

	s.mux.Get("/login", h.loginForm)
	s.mux.Post("/login", h.login)
	s.mux.Get("/verify", h.verifyForm)
	s.mux.Post("/verify", h.verify)
	s.mux.Post("/logout", h.logout)
	s.mux.Get("/profile", h.profile)
	return nil
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) layout(r *http.Request, title string, body any) layoutData {
	u, _ := session.From(r.Context()).CurrentUser(r.Context())
	return layoutData{Title: title, User: u, Body: body}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.pages.render(w, status, "error", h.layout(r, "Erreur", msg))
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// needsLogin reports errors that mean the visitor must sign in again.
func needsLogin(err error) bool {
	return errors.Is(err, domain.ErrNoSession) || errors.Is(err, domain.ErrUnauthorized)
}

func redirectLogin(w http.ResponseWriter, r *http.Request, expired bool) {
	target := "/login"
	if expired {
		target += "?expired=1"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ---- places ----

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	places, err := h.Queries.ListPlaces(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list places failed")
	}
	page := view.Loaded(places, err, view.MsgPlacesFailed, func(ps []domain.Place) bool { return len(ps) == 0 }, view.MsgPlacesEmpty)
	status := http.StatusOK
	if page.State == view.Error {
		status = http.StatusBadGateway
	}
	h.pages.render(w, status, "home", h.layout(r, "", page))
}

type placePage struct {
	User          *domain.Claims
	Detail        app.PlaceDetail
	Reviews       view.Page[[]domain.Review]
	ReviewError   string
	ReviewComment string
	LoginRequired string
}

func (h *Handlers) placeDetail(w http.ResponseWriter, r *http.Request) {
	h.renderPlace(w, r, http.StatusOK, "", "")
}

func (h *Handlers) renderPlace(w http.ResponseWriter, r *http.Request, status int, reviewErr, comment string) {
	id, ok := pathID(r, "id")
	if !ok {
		h.fail(w, r, http.StatusNotFound, view.MsgPlaceNotFound)
		return
	}
	d, err := h.Queries.PlaceDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.fail(w, r, http.StatusNotFound, view.MsgPlaceNotFound)
			return
		}
		log.Error().Err(err).Int64("place_id", id).Msg("place detail failed")
		h.fail(w, r, http.StatusBadGateway, view.Message(err, view.MsgPlaceFailed))
		return
	}
	data := h.layout(r, d.Place.Name, nil)
	if r.URL.Query().Get("incomplete") != "" {
		data.Flash = view.MsgIncomplete
	}
	data.Body = placePage{
		User:          data.User,
		Detail:        d,
		Reviews:       view.Loaded(d.Reviews, d.ReviewsErr, view.MsgReviewsFailed, func(rs []domain.Review) bool { return len(rs) == 0 }, view.MsgReviewsEmpty),
		ReviewError:   reviewErr,
		ReviewComment: comment,
		LoginRequired: view.MsgLoginRequired,
	}
	h.pages.render(w, status, "place", data)
}

type placeFormPage struct {
	Action         string
	Editing        bool
	Message        string
	Form           app.PlaceForm
	Selected       map[string]bool
	Vocabulary     []string
	ExistingImages []domain.Image
}

func newFormPage(action string, f app.PlaceForm) placeFormPage {
	sel := make(map[string]bool, len(f.Amenities))
	for _, a := range f.Amenities {
		sel[a] = true
	}
	return placeFormPage{Action: action, Form: f, Selected: sel, Vocabulary: domain.AmenityVocabulary}
}

func (h *Handlers) newPlaceForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.From(r.Context()).Token(r.Context()); !ok {
		redirectLogin(w, r, false)
		return
	}
	h.pages.render(w, http.StatusOK, "place_form", h.layout(r, "Nouveau lieu", newFormPage("/places/new", app.PlaceForm{})))
}

func (h *Handlers) createPlace(w http.ResponseWriter, r *http.Request) {
	tok, ok := session.From(r.Context()).Token(r.Context())
	if !ok {
		redirectLogin(w, r, false)
		return
	}
	form, closeFiles, err := readPlaceForm(r)
	defer closeFiles()
	if err != nil {
		page := newFormPage("/places/new", form)
		page.Message = view.MsgCreateFailed
		h.pages.render(w, http.StatusBadRequest, "place_form", h.layout(r, "Nouveau lieu", page))
		return
	}

	res, err := h.Places.Create(r.Context(), tok, form)
	switch {
	case err == nil:
		h.Queries.Invalidate(r.Context(), res.PlaceID)
		http.Redirect(w, r, placeURL(res.PlaceID, nil), http.StatusSeeOther)
	case errors.Is(err, domain.ErrIncomplete) && !res.Compensated:
		h.Queries.Invalidate(r.Context(), res.PlaceID)
		http.Redirect(w, r, placeURL(res.PlaceID, url.Values{"incomplete": {"1"}}), http.StatusSeeOther)
	case needsLogin(err):
		redirectLogin(w, r, true)
	default:
		page := newFormPage("/places/new", form)
		page.Message = view.Message(err, view.MsgCreateFailed)
		if res.Compensated {
			page.Message = view.MsgCompensated
		}
		status := http.StatusBadGateway
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			status = http.StatusUnprocessableEntity
		}
		h.pages.render(w, status, "place_form", h.layout(r, "Nouveau lieu", page))
	}
}

// ownedPlace loads the place and checks the visitor owns it. It writes the
// response itself when the answer is no.
func (h *Handlers) ownedPlace(w http.ResponseWriter, r *http.Request) (domain.Place, string, bool) {
	s := session.From(r.Context())
	tok, ok := s.Token(r.Context())
	if !ok {
		redirectLogin(w, r, false)
		return domain.Place{}, "", false
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.fail(w, r, http.StatusNotFound, view.MsgPlaceNotFound)
		return domain.Place{}, "", false
	}
	p, err := h.Queries.GetPlace(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.fail(w, r, http.StatusNotFound, view.MsgPlaceNotFound)
		} else {
			h.fail(w, r, http.StatusBadGateway, view.Message(err, view.MsgPlaceFailed))
		}
		return domain.Place{}, "", false
	}
	claims, _ := s.CurrentUser(r.Context())
	if !view.CanEditPlace(claims, p) {
		h.fail(w, r, http.StatusForbidden, view.MsgForbidden)
		return domain.Place{}, "", false
	}
	return p, tok, true
}

func formFromPlace(p domain.Place) app.PlaceForm {
	f := app.PlaceForm{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.PriceByNight, 'f', -1, 64),
		Location:    p.Location,
		Country:     p.Country,
		Town:        p.Town,
	}
	if p.Latitude != nil {
		f.Latitude = strconv.FormatFloat(*p.Latitude, 'f', -1, 64)
	}
	if p.Longitude != nil {
		f.Longitude = strconv.FormatFloat(*p.Longitude, 'f', -1, 64)
	}
	for _, a := range p.Amenities {
		f.Amenities = append(f.Amenities, a.Name)
	}
	return f
}

func (h *Handlers) editPlaceForm(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.ownedPlace(w, r)
	if !ok {
		return
	}
	page := newFormPage(placeURL(p.ID, nil)+"/edit", formFromPlace(p))
	page.Editing = true
	page.ExistingImages = p.Images
	h.pages.render(w, http.StatusOK, "place_form", h.layout(r, "Modifier", page))
}

func (h *Handlers) updatePlace(w http.ResponseWriter, r *http.Request) {
	p, tok, ok := h.ownedPlace(w, r)
	if !ok {
		return
	}
	form, closeFiles, err := readPlaceForm(r)
	defer closeFiles()

	if err == nil {
		_, err = h.Places.Update(r.Context(), tok, p, form)
	}
	switch {
	case err == nil:
		h.Queries.Invalidate(r.Context(), p.ID)
		http.Redirect(w, r, placeURL(p.ID, nil), http.StatusSeeOther)
	case errors.Is(err, domain.ErrIncomplete):
		h.Queries.Invalidate(r.Context(), p.ID)
		http.Redirect(w, r, placeURL(p.ID, url.Values{"incomplete": {"1"}}), http.StatusSeeOther)
	case needsLogin(err):
		redirectLogin(w, r, true)
	default:
		page := newFormPage(placeURL(p.ID, nil)+"/edit", form)
		page.Editing = true
		page.ExistingImages = p.Images
		page.Message = view.Message(err, view.MsgUpdateFailed)
		h.pages.render(w, http.StatusUnprocessableEntity, "place_form", h.layout(r, "Modifier", page))
	}
}

func (h *Handlers) deletePlace(w http.ResponseWriter, r *http.Request) {
	p, tok, ok := h.ownedPlace(w, r)
	if !ok {
		return
	}
	if err := h.Places.Delete(r.Context(), tok, p.ID); err != nil {
		if needsLogin(err) {
			redirectLogin(w, r, true)
			return
		}
		log.Error().Err(err).Int64("place_id", p.ID).Msg("delete place failed")
		h.fail(w, r, http.StatusBadGateway, view.Message(err, view.MsgDeleteFailed))
		return
	}
	h.Queries.Invalidate(r.Context(), p.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// readPlaceForm parses the multipart place form. The returned func closes
// any opened upload and is always safe to call.
func readPlaceForm(r *http.Request) (app.PlaceForm, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return app.PlaceForm{}, closeAll, err
	}

	f := app.PlaceForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price_by_night"),
		Location:    r.FormValue("location"),
		Country:     r.FormValue("country"),
		Town:        r.FormValue("town"),
		Latitude:    r.FormValue("latitude"),
		Longitude:   r.FormValue("longitude"),
	}
	for _, a := range r.Form["amenities"] {
		for _, known := range domain.AmenityVocabulary {
			if a == known {
				f.Amenities = append(f.Amenities, a)
			}
		}
	}

	if r.MultipartForm != nil {
		for _, hdr := range r.MultipartForm.File["images"] {
			if hdr.Filename == "" || hdr.Size == 0 {
				continue
			}
			file, err := hdr.Open()
			if err != nil {
				return f, closeAll, err
			}
			files = append(files, file)
			f.Images = append(f.Images, domain.FileImage(&domain.ImageFile{
				Filename:    hdr.Filename,
				ContentType: hdr.Header.Get("Content-Type"),
				Body:        file,
			}))
		}
	}
	for _, line := range strings.Split(r.FormValue("image_urls"), "\n") {
		if u := strings.TrimSpace(line); u != "" {
			f.Images = append(f.Images, domain.URLImage(u))
		}
	}
	return f, closeAll, nil
}

// ---- reviews ----

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.fail(w, r, http.StatusNotFound, view.MsgPlaceNotFound)
		return
	}
	rating, _ := strconv.Atoi(r.FormValue("rating"))
	comment := r.FormValue("comment")

	_, err := h.Reviews.Create(r.Context(), session.From(r.Context()), id, domain.ReviewInput{Rating: rating, Comment: comment})
	switch {
	case err == nil:
		http.Redirect(w, r, placeURL(id, nil), http.StatusSeeOther)
	case errors.Is(err, domain.ErrNoSession):
		h.renderPlace(w, r, http.StatusUnauthorized, view.MsgLoginRequired, comment)
	case errors.Is(err, domain.ErrUnauthorized):
		redirectLogin(w, r, true)
	default:
		log.Warn().Err(err).Int64("place_id", id).Msg("create review failed")
		h.renderPlace(w, r, http.StatusUnprocessableEntity, view.Message(err, view.MsgServer), comment)
	}
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok1 := pathID(r, "id")
	rid, ok2 := pathID(r, "rid")
	if !ok1 || !ok2 {
		h.fail(w, r, http.StatusNotFound, view.MsgPlaceNotFound)
		return
	}
	err := h.Reviews.Delete(r.Context(), session.From(r.Context()), id, rid)
	switch {
	case err == nil:
		http.Redirect(w, r, placeURL(id, nil), http.StatusSeeOther)
	case needsLogin(err):
		redirectLogin(w, r, errors.Is(err, domain.ErrUnauthorized))
	default:
		log.Warn().Err(err).Int64("review_id", rid).Msg("delete review failed")
		h.renderPlace(w, r, http.StatusBadGateway, view.Message(err, view.MsgReviewDeleteErr), "")
	}
}

// ---- account ----

type loginPage struct {
	Email   string
	Message string
}

func (h *Handlers) loginForm(w http.ResponseWriter, r *http.Request) {
	page := loginPage{}
	if r.URL.Query().Get("expired") != "" {
		page.Message = view.MsgSessionExpired
	}
	h.pages.render(w, http.StatusOK, "login", h.layout(r, "Connexion", page))
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	err := h.Accounts.StartLogin(r.Context(), session.From(r.Context()), email, r.FormValue("password"))
	if err != nil {
		msg := view.Message(err, view.MsgLoginFailed)
		status := http.StatusUnauthorized
		if errors.Is(err, domain.ErrUnreachable) {
			status = http.StatusBadGateway
		}
		h.pages.render(w, status, "login", h.layout(r, "Connexion", loginPage{Email: email, Message: msg}))
		return
	}
	http.Redirect(w, r, "/verify?sent=1", http.StatusSeeOther)
}

type verifyPage struct {
	Info    string
	Message string
}

func (h *Handlers) verifyForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.From(r.Context()).PendingEmail(r.Context()); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	page := verifyPage{}
	if r.URL.Query().Get("sent") != "" {
		page.Info = view.MsgCodeSent
	}
	h.pages.render(w, http.StatusOK, "verify", h.layout(r, "Vérification", page))
}

func (h *Handlers) verify(w http.ResponseWriter, r *http.Request) {
	err := h.Accounts.Verify(r.Context(), session.From(r.Context()), r.FormValue("code"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, app.ErrLoginExpired):
		redirectLogin(w, r, true)
	default:
		msg := view.Message(err, view.MsgCodeInvalid)
		if errors.Is(err, domain.ErrUnauthorized) {
			msg = view.MsgCodeInvalid
		}
		h.pages.render(w, http.StatusUnauthorized, "verify", h.layout(r, "Vérification", verifyPage{Message: msg}))
	}
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.Logout(r.Context(), session.From(r.Context())); err != nil {
		log.Warn().Err(err).Msg("logout failed")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Accounts.Profile(r.Context(), session.From(r.Context()))
	if err != nil {
		if needsLogin(err) {
			redirectLogin(w, r, errors.Is(err, domain.ErrUnauthorized))
			return
		}
		log.Error().Err(err).Msg("profile failed")
		h.fail(w, r, http.StatusBadGateway, view.MsgProfileFailed)
		return
	}
	h.pages.render(w, http.StatusOK, "profile", h.layout(r, "Profil", p))
}

// ---- ops ----

func (h *Handlers) listIncomplete(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Journal disabled", "MYSQL_DSN is not configured")
		return
	}
	limit := 100
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 1000 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 1000")
			return
		}
		limit = l
	}
	out, err := h.Journal.ListIncomplete(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list incomplete workflows failed")
		writeProblem(w, http.StatusInternalServerError, "Journal error", "")
		return
	}
	if out == nil {
		out = []domain.WorkflowOutcome{}
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write incomplete workflows body")
	}
}

// placeURL is the detail page of a place, optionally with a query.
func placeURL(id int64, q url.Values) string {
	u := "/place/" + strconv.FormatInt(id, 10)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
