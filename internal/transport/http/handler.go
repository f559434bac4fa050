package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"diagnosis-quiz-service/internal/app"
	"diagnosis-quiz-service/internal/domain"
	"diagnosis-quiz-service/internal/platform/logger"
	"diagnosis-quiz-service/internal/render"
)

const maxBodyBytes = 1 << 20

// Handler exposes the quiz and play use cases as JSON over HTTP.
type Handler struct {
	quizzes *app.QuizService
	plays   *app.PlayService
	log     *logger.Logger
}

func NewHandler(quizzes *app.QuizService, plays *app.PlayService, log *logger.Logger) *Handler {
	return &Handler{quizzes: quizzes, plays: plays, log: log}
}

// Register mounts every REST route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /quizzes/generate", h.generate)
	mux.HandleFunc("POST /quizzes", h.publish)
	mux.HandleFunc("GET /quizzes", h.gallery)
	mux.HandleFunc("GET /quizzes/{id}", h.getQuiz)
	mux.HandleFunc("GET /quizzes/{id}/html", h.exportHTML)
	mux.HandleFunc("GET /quizzes/{id}/play", h.playPage)
	mux.HandleFunc("POST /quizzes/{id}/plays", h.startPlay)
	mux.HandleFunc("GET /plays/{id}", h.viewPlay)
	mux.HandleFunc("DELETE /plays/{id}", h.abandonPlay)
	mux.HandleFunc("POST /plays/{id}/answers", h.answer)
	mux.HandleFunc("POST /plays/{id}/restart", h.restart)
	mux.HandleFunc("GET /plays/{id}/result", h.result)
}

type generateRequest struct {
	Theme string `json:"theme"`
}

type publishRequest struct {
	Definition domain.QuizDefinition `json:"definition"`
	OwnerEmail string                `json:"ownerEmail"`
	Public     bool                  `json:"public"`
}

type answerRequest struct {
	OptionIndex *int `json:"optionIndex"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}
	def, err := h.quizzes.Generate(r.Context(), req.Theme)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, def)
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !h.decode(w, r, &req) {
		return
	}
	pub, err := h.quizzes.Publish(r.Context(), app.PublishRequest{
		Definition: req.Definition,
		OwnerEmail: req.OwnerEmail,
		Public:     req.Public,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, pub)
}

func (h *Handler) gallery(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.json(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	cards, err := h.quizzes.Gallery(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, cards)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	rec, err := h.quizzes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec.OwnerEmail = ""
	h.json(w, http.StatusOK, rec)
}

func (h *Handler) exportHTML(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, true)
}

func (h *Handler) playPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, false)
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, download bool) {
	id := r.PathValue("id")
	body, err := h.quizzes.RenderHTML(r.Context(), id, render.Options{MainColor: r.URL.Query().Get("color")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if download {
		w.Header().Set("Content-Disposition", `attachment; filename="quiz-`+id+`.html"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) startPlay(w http.ResponseWriter, r *http.Request) {
	view, err := h.plays.Start(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, view)
}

func (h *Handler) viewPlay(w http.ResponseWriter, r *http.Request) {
	view, err := h.plays.View(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, view)
}

func (h *Handler) abandonPlay(w http.ResponseWriter, r *http.Request) {
	if err := h.plays.Abandon(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OptionIndex == nil {
		h.json(w, http.StatusBadRequest, errorResponse{Error: "optionIndex is required"})
		return
	}
	view, err := h.plays.Answer(r.Context(), r.PathValue("id"), *req.OptionIndex)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, view)
}

func (h *Handler) restart(w http.ResponseWriter, r *http.Request) {
	view, err := h.plays.Restart(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, view)
}

func (h *Handler) result(w http.ResponseWriter, r *http.Request) {
	res, err := h.plays.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, res)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.json(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	h.json(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) json(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn("encode response", "error", err)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidDefinition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrEmptyTheme),
		errors.Is(err, render.ErrInvalidColor):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionCompleted), errors.Is(err, domain.ErrSessionNotCompleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrPlayNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
