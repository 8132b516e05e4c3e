// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/bookshelf-api/internal/core"
)

const minYear = 1500

// BookDetail carries a book together with its resolved attribute
// objects for detail serialization.
type BookDetail struct {
	Book    Book
	Tags    []Attribute
	Authors []Attribute
}

type Service struct {
	attrs AttributeRepository
	books BookRepository
	now   func() time.Time
}

func NewService(attrs AttributeRepository, books BookRepository) *Service {
	return &Service{
		attrs: attrs,
		books: books,
		now:   time.Now,
	}
}

func (s *Service) ListAttributes(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	assignedOnly bool,
) ([]Attribute, error) {
	return s.attrs.List(ctx, kind, ownerID, assignedOnly)
}

func (s *Service) CreateAttribute(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	req AttributeRequest,
) (*Attribute, error) {
	name, verr := req.Validate(false)
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	attr := &Attribute{Name: name, UserID: ownerID}
	if err := s.attrs.Create(ctx, kind, attr); err != nil {
		return nil, err
	}

	return attr, nil
}

func (s *Service) GetAttribute(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
) (*Attribute, error) {
	return s.attrs.GetByID(ctx, kind, ownerID, id)
}

func (s *Service) UpdateAttribute(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
	req AttributeRequest,
	partial bool,
) (*Attribute, error) {
	name, verr := req.Validate(partial)
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	if req.Name == nil {
		// Partial update with no fields supplied: return current state.
		return s.attrs.GetByID(ctx, kind, ownerID, id)
	}

	return s.attrs.UpdateName(ctx, kind, ownerID, id, name)
}

func (s *Service) DeleteAttribute(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
) error {
	return s.attrs.Delete(ctx, kind, ownerID, id)
}

// ListBooks parses the raw id-list filters before touching storage so a
// malformed token fails the whole request. Empty filters mean no
// filtering at all.
func (s *Service) ListBooks(
	ctx context.Context,
	ownerID string,
	rawTags, rawAuthors string,
) ([]Book, error) {
	verr := core.NewValidationError()

	tagIDs, err := ParseIDList(rawTags)
	if err != nil {
		verr.Addf("tags", "%s", err.Error())
	}

	authorIDs, err := ParseIDList(rawAuthors)
	if err != nil {
		verr.Addf("authors", "%s", err.Error())
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	return s.books.List(ctx, ownerID, BookFilter{
		TagIDs:    tagIDs,
		AuthorIDs: authorIDs,
	})
}

func (s *Service) CreateBook(
	ctx context.Context,
	ownerID string,
	req BookRequest,
) (*Book, error) {
	book := &Book{UserID: ownerID}
	verr := core.NewValidationError()

	s.applyScalars(book, req, false, verr)

	book.TagIDs = s.resolveRefs(
		ctx, KindTag, ownerID, dedupeIDs(req.TagIDs), verr,
	)
	book.AuthorIDs = s.resolveRefs(
		ctx, KindAuthor, ownerID, dedupeIDs(req.AuthorIDs), verr,
	)

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	if book.TagIDs == nil {
		book.TagIDs = []int64{}
	}
	if book.AuthorIDs == nil {
		book.AuthorIDs = []int64{}
	}

	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

func (s *Service) GetBook(
	ctx context.Context,
	ownerID string,
	id int64,
) (*BookDetail, error) {
	book, err := s.books.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	return s.toDetail(ctx, ownerID, book)
}

// UpdateBook applies the supplied fields on top of the stored book. In
// replace mode an omitted link set resets to empty; in merge mode it is
// preserved. Ownership of every referenced tag and author is checked
// against the caller before anything is written.
func (s *Service) UpdateBook(
	ctx context.Context,
	ownerID string,
	id int64,
	req BookRequest,
	mode RelationMode,
) (*BookDetail, error) {
	book, err := s.books.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	verr := core.NewValidationError()

	if mode == RelationReplace {
		s.requireScalars(req, verr)
	}
	s.applyScalars(book, req, true, verr)

	setTags := false
	switch {
	case req.TagIDs != nil:
		book.TagIDs = s.resolveRefs(
			ctx, KindTag, ownerID, dedupeIDs(req.TagIDs), verr,
		)
		setTags = true
	case mode == RelationReplace:
		book.TagIDs = []int64{}
		setTags = true
	}

	setAuthors := false
	switch {
	case req.AuthorIDs != nil:
		book.AuthorIDs = s.resolveRefs(
			ctx, KindAuthor, ownerID, dedupeIDs(req.AuthorIDs), verr,
		)
		setAuthors = true
	case mode == RelationReplace:
		book.AuthorIDs = []int64{}
		setAuthors = true
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	if err := s.books.Update(ctx, book, setTags, setAuthors); err != nil {
		return nil, err
	}

	return s.toDetail(ctx, ownerID, book)
}

// DeleteBook removes the book and reports the cover path so the caller
// can clean up the stored file.
func (s *Service) DeleteBook(
	ctx context.Context,
	ownerID string,
	id int64,
) (coverPath string, err error) {
	book, err := s.books.GetByID(ctx, ownerID, id)
	if err != nil {
		return "", err
	}

	if err := s.books.Delete(ctx, ownerID, id); err != nil {
		return "", err
	}

	if book.CoverPath != nil {
		coverPath = *book.CoverPath
	}

	return coverPath, nil
}

// AttachCover records a new cover path and reports the one it replaced.
func (s *Service) AttachCover(
	ctx context.Context,
	ownerID string,
	id int64,
	coverPath string,
) (book *Book, previous string, err error) {
	book, err = s.books.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}

	if err := s.books.UpdateCover(ctx, ownerID, id, coverPath); err != nil {
		return nil, "", err
	}

	if book.CoverPath != nil {
		previous = *book.CoverPath
	}
	book.CoverPath = &coverPath

	return book, previous, nil
}

func (s *Service) applyScalars(
	book *Book,
	req BookRequest,
	partial bool,
	verr *core.ValidationError,
) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		switch {
		case title == "":
			verr.Add("title", "this field may not be blank")
		case len(title) > 255:
			verr.Add("title", "ensure this field has no more than 255 characters")
		default:
			book.Title = title
		}
	} else if !partial {
		verr.Add("title", "this field is required")
	}

	if req.Pages != nil {
		if *req.Pages < 0 {
			verr.Add("pages", "ensure this value is greater than or equal to 0")
		} else {
			book.Pages = *req.Pages
		}
	} else if !partial {
		verr.Add("pages", "this field is required")
	}

	if req.Year != nil {
		currentYear := s.now().Year()
		if *req.Year < minYear || *req.Year > currentYear {
			verr.Addf("year",
				"ensure this value is between %d and %d", minYear, currentYear)
		} else {
			book.Year = *req.Year
		}
	} else if !partial {
		verr.Add("year", "this field is required")
	}

	if req.Price != nil {
		if *req.Price > maxPriceCents {
			verr.Add("price", "ensure this value is less than or equal to 999.99")
		} else {
			book.Price = *req.Price
		}
	} else if !partial {
		verr.Add("price", "this field is required")
	}

	if req.Link != nil {
		if len(*req.Link) > 255 {
			verr.Add("link", "ensure this field has no more than 255 characters")
		} else {
			book.Link = *req.Link
		}
	}
}

// requireScalars marks fields a full update must carry. Link stays
// optional; when omitted the stored value is preserved.
func (s *Service) requireScalars(req BookRequest, verr *core.ValidationError) {
	if req.Title == nil {
		verr.Add("title", "this field is required")
	}
	if req.Pages == nil {
		verr.Add("pages", "this field is required")
	}
	if req.Year == nil {
		verr.Add("year", "this field is required")
	}
	if req.Price == nil {
		verr.Add("price", "this field is required")
	}
}

// resolveRefs checks that every referenced id resolves inside the
// caller's collection. Ids belonging to other users are reported the
// same way as nonexistent ones.
func (s *Service) resolveRefs(
	ctx context.Context,
	kind AttributeKind,
	ownerID string,
	ids []int64,
	verr *core.ValidationError,
) []int64 {
	if len(ids) == 0 {
		return ids
	}

	owned, err := s.attrs.GetMany(ctx, kind, ownerID, ids)
	if err != nil {
		verr.Addf(kind.String()+"s", "could not resolve ids")
		return nil
	}

	ownedSet := make(map[int64]struct{}, len(owned))
	for _, attr := range owned {
		ownedSet[attr.ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := ownedSet[id]; !ok {
			verr.Addf(kind.String()+"s",
				`invalid pk "%d" - object does not exist`, id)
		}
	}

	return ids
}

func (s *Service) toDetail(
	ctx context.Context,
	ownerID string,
	book *Book,
) (*BookDetail, error) {
	tags, err := s.attrs.GetMany(ctx, KindTag, ownerID, book.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	authors, err := s.attrs.GetMany(ctx, KindAuthor, ownerID, book.AuthorIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve authors: %w", err)
	}

	return &BookDetail{Book: *book, Tags: tags, Authors: authors}, nil
}
