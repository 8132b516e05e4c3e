// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/bookshelf-api/internal/core"
	"github.com/carterperez-dev/bookshelf-api/internal/middleware"
	"github.com/carterperez-dev/bookshelf-api/internal/storage"
)

type Handler struct {
	service *Service
	store   *storage.Store
}

func NewHandler(service *Service, store *storage.Store) *Handler {
	return &Handler{service: service, store: store}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	registerAttribute := func(prefix string, kind AttributeKind) {
		r.Route(prefix, func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/", h.listAttributes(kind))
			r.Post("/", h.createAttribute(kind))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getAttribute(kind))
				r.Put("/", h.updateAttribute(kind, false))
				r.Patch("/", h.updateAttribute(kind, true))
				r.Delete("/", h.deleteAttribute(kind))
			})
		})
	}

	registerAttribute("/tags", KindTag)
	registerAttribute("/authors", KindAuthor)

	r.Route("/books", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListBooks)
		r.Post("/", h.CreateBook)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetBook)
			r.Put("/", h.updateBook(RelationReplace))
			r.Patch("/", h.updateBook(RelationMerge))
			r.Delete("/", h.DeleteBook)
			r.Post("/image", h.UploadCover)
		})
	})
}

func (h *Handler) listAttributes(kind AttributeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := middleware.GetUserID(r.Context())
		assignedOnly := isTruthy(r.URL.Query().Get("assigned_only"))

		attrs, err := h.service.ListAttributes(
			r.Context(), kind, ownerID, assignedOnly,
		)
		if err != nil {
			h.respondError(w, err, kind.String())
			return
		}

		core.OK(w, ToAttributeResponseList(attrs))
	}
}

func (h *Handler) createAttribute(kind AttributeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := middleware.GetUserID(r.Context())

		var req AttributeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}

		attr, err := h.service.CreateAttribute(r.Context(), kind, ownerID, req)
		if err != nil {
			h.respondError(w, err, kind.String())
			return
		}

		core.Created(w, ToAttributeResponse(attr))
	}
}

func (h *Handler) getAttribute(kind AttributeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := middleware.GetUserID(r.Context())

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		attr, err := h.service.GetAttribute(r.Context(), kind, ownerID, id)
		if err != nil {
			h.respondError(w, err, kind.String())
			return
		}

		core.OK(w, ToAttributeResponse(attr))
	}
}

func (h *Handler) updateAttribute(
	kind AttributeKind,
	partial bool,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := middleware.GetUserID(r.Context())

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req AttributeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}

		attr, err := h.service.UpdateAttribute(
			r.Context(), kind, ownerID, id, req, partial,
		)
		if err != nil {
			h.respondError(w, err, kind.String())
			return
		}

		core.OK(w, ToAttributeResponse(attr))
	}
}

func (h *Handler) deleteAttribute(kind AttributeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := middleware.GetUserID(r.Context())

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		err := h.service.DeleteAttribute(r.Context(), kind, ownerID, id)
		if err != nil {
			h.respondError(w, err, kind.String())
			return
		}

		core.NoContent(w)
	}
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	query := r.URL.Query()

	books, err := h.service.ListBooks(
		r.Context(), ownerID,
		query.Get("tags"),
		query.Get("authors"),
	)
	if err != nil {
		h.respondError(w, err, "book")
		return
	}

	core.OK(w, ToBookResponseList(books, h.store.URL))
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	book, err := h.service.CreateBook(r.Context(), ownerID, req)
	if err != nil {
		h.respondError(w, err, "book")
		return
	}

	core.Created(w, ToBookResponse(book, h.store.URL))
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetBook(r.Context(), ownerID, id)
	if err != nil {
		h.respondError(w, err, "book")
		return
	}

	core.OK(w, ToBookDetailResponse(detail, h.store.URL))
}

func (h *Handler) updateBook(mode RelationMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := middleware.GetUserID(r.Context())

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req BookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}

		detail, err := h.service.UpdateBook(r.Context(), ownerID, id, req, mode)
		if err != nil {
			h.respondError(w, err, "book")
			return
		}

		core.OK(w, ToBookDetailResponse(detail, h.store.URL))
	}
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	coverPath, err := h.service.DeleteBook(r.Context(), ownerID, id)
	if err != nil {
		h.respondError(w, err, "book")
		return
	}

	//nolint:errcheck // best-effort cleanup of the orphaned cover file
	_ = h.store.Remove(coverPath)

	core.NoContent(w)
}

func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxUploadSize())

	file, _, err := r.FormFile("image")
	if err != nil {
		core.BadRequest(w, "multipart field 'image' is required")
		return
	}
	defer file.Close() //nolint:errcheck // read-only temp file

	data, err := io.ReadAll(file)
	if err != nil {
		core.BadRequest(w, "could not read upload")
		return
	}

	name, err := h.store.SaveImage(data)
	if err != nil {
		h.respondError(w, err, "book")
		return
	}

	book, previous, err := h.service.AttachCover(r.Context(), ownerID, id, name)
	if err != nil {
		// The row vanished or was never the caller's; drop the file we
		// just wrote.
		//nolint:errcheck // best-effort cleanup
		_ = h.store.Remove(name)
		h.respondError(w, err, "book")
		return
	}

	//nolint:errcheck // best-effort cleanup of the replaced cover
	_ = h.store.Remove(previous)

	url := h.store.URL(name)
	core.OK(w, BookImageResponse{ID: book.ID, Image: &url})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, resource string) {
	switch {
	case core.IsValidationError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("name"))
	case errors.Is(err, core.ErrInvalidFile):
		core.BadRequest(w, "upload must be an image")
	default:
		core.InternalServerError(w, err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		core.NotFound(w, "resource")
		return 0, false
	}

	return id, true
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "True", "yes", "on":
		return true
	default:
		return false
	}
}
