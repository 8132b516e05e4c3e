// AngelaMos | 2026
// fake_test.go

package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/carterperez-dev/bookshelf-api/internal/core"
)

// fakeStore backs the in-memory repository fakes. It mirrors the SQL
// semantics the real repositories rely on, ownership predicate
// included, so service behavior can be tested without a database.
type fakeStore struct {
	attrs  map[AttributeKind][]Attribute
	books  []Book
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		attrs:  map[AttributeKind][]Attribute{},
		nextID: 1,
	}
}

func (s *fakeStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

type fakeAttrRepo struct {
	store *fakeStore
}

func (r *fakeAttrRepo) List(
	_ context.Context,
	kind AttributeKind,
	ownerID string,
	assignedOnly bool,
) ([]Attribute, error) {
	linked := map[int64]bool{}
	if assignedOnly {
		for _, b := range r.store.books {
			if b.UserID != ownerID {
				continue
			}
			ids := b.TagIDs
			if kind == KindAuthor {
				ids = b.AuthorIDs
			}
			for _, id := range ids {
				linked[id] = true
			}
		}
	}

	out := []Attribute{}
	for _, a := range r.store.attrs[kind] {
		if a.UserID != ownerID {
			continue
		}
		if assignedOnly && !linked[a.ID] {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })

	return out, nil
}

func (r *fakeAttrRepo) Create(
	_ context.Context,
	kind AttributeKind,
	attr *Attribute,
) error {
	attr.ID = r.store.id()
	r.store.attrs[kind] = append(r.store.attrs[kind], *attr)
	return nil
}

func (r *fakeAttrRepo) GetByID(
	_ context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
) (*Attribute, error) {
	for _, a := range r.store.attrs[kind] {
		if a.ID == id && a.UserID == ownerID {
			found := a
			return &found, nil
		}
	}
	return nil, fmt.Errorf("get %s: %w", kind, core.ErrNotFound)
}

func (r *fakeAttrRepo) UpdateName(
	_ context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
	name string,
) (*Attribute, error) {
	for i, a := range r.store.attrs[kind] {
		if a.ID == id && a.UserID == ownerID {
			r.store.attrs[kind][i].Name = name
			found := r.store.attrs[kind][i]
			return &found, nil
		}
	}
	return nil, fmt.Errorf("update %s: %w", kind, core.ErrNotFound)
}

func (r *fakeAttrRepo) Delete(
	_ context.Context,
	kind AttributeKind,
	ownerID string,
	id int64,
) error {
	for i, a := range r.store.attrs[kind] {
		if a.ID == id && a.UserID == ownerID {
			r.store.attrs[kind] = append(
				r.store.attrs[kind][:i], r.store.attrs[kind][i+1:]...,
			)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", kind, core.ErrNotFound)
}

func (r *fakeAttrRepo) GetMany(
	_ context.Context,
	kind AttributeKind,
	ownerID string,
	ids []int64,
) ([]Attribute, error) {
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}

	out := []Attribute{}
	for _, a := range r.store.attrs[kind] {
		if a.UserID == ownerID && want[a.ID] {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })

	return out, nil
}

type fakeBookRepo struct {
	store *fakeStore
}

func (r *fakeBookRepo) List(
	_ context.Context,
	ownerID string,
	filter BookFilter,
) ([]Book, error) {
	out := []Book{}
	for _, b := range r.store.books {
		if b.UserID != ownerID {
			continue
		}
		if filter.TagIDs != nil && !intersects(b.TagIDs, filter.TagIDs) {
			continue
		}
		if filter.AuthorIDs != nil && !intersects(b.AuthorIDs, filter.AuthorIDs) {
			continue
		}
		out = append(out, copyBook(b))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return out, nil
}

func (r *fakeBookRepo) Create(_ context.Context, book *Book) error {
	book.ID = r.store.id()
	r.store.books = append(r.store.books, copyBook(*book))
	return nil
}

func (r *fakeBookRepo) GetByID(
	_ context.Context,
	ownerID string,
	id int64,
) (*Book, error) {
	for _, b := range r.store.books {
		if b.ID == id && b.UserID == ownerID {
			found := copyBook(b)
			return &found, nil
		}
	}
	return nil, fmt.Errorf("get book: %w", core.ErrNotFound)
}

func (r *fakeBookRepo) Update(
	_ context.Context,
	book *Book,
	setTags, setAuthors bool,
) error {
	for i, b := range r.store.books {
		if b.ID == book.ID && b.UserID == book.UserID {
			updated := copyBook(*book)
			if !setTags {
				updated.TagIDs = b.TagIDs
			}
			if !setAuthors {
				updated.AuthorIDs = b.AuthorIDs
			}
			r.store.books[i] = updated
			return nil
		}
	}
	return fmt.Errorf("update book: %w", core.ErrNotFound)
}

func (r *fakeBookRepo) Delete(
	_ context.Context,
	ownerID string,
	id int64,
) error {
	for i, b := range r.store.books {
		if b.ID == id && b.UserID == ownerID {
			r.store.books = append(r.store.books[:i], r.store.books[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete book: %w", core.ErrNotFound)
}

func (r *fakeBookRepo) UpdateCover(
	_ context.Context,
	ownerID string,
	id int64,
	coverPath string,
) error {
	for i, b := range r.store.books {
		if b.ID == id && b.UserID == ownerID {
			path := coverPath
			r.store.books[i].CoverPath = &path
			return nil
		}
	}
	return fmt.Errorf("update cover: %w", core.ErrNotFound)
}

func copyBook(b Book) Book {
	out := b
	out.TagIDs = append([]int64{}, b.TagIDs...)
	out.AuthorIDs = append([]int64{}, b.AuthorIDs...)
	return out
}

func intersects(have, want []int64) bool {
	set := map[int64]bool{}
	for _, id := range have {
		set[id] = true
	}
	for _, id := range want {
		if set[id] {
			return true
		}
	}
	return false
}
