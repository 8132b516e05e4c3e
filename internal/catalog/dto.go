// AngelaMos | 2026
// dto.go

package catalog

import (
	"strings"

	"github.com/carterperez-dev/bookshelf-api/internal/core"
)

type AttributeRequest struct {
	Name *string `json:"name"`
}

// Validate enforces the name constraints, requiring presence only for
// full writes. Errors accumulate so the caller sees every problem at
// once.
func (r AttributeRequest) Validate(partial bool) (string, *core.ValidationError) {
	verr := core.NewValidationError()

	if r.Name == nil {
		if !partial {
			verr.Add("name", "this field is required")
		}
		return "", verr
	}

	name := strings.TrimSpace(*r.Name)
	if name == "" {
		verr.Add("name", "this field may not be blank")
	}
	if len(name) > 255 {
		verr.Add("name", "ensure this field has no more than 255 characters")
	}

	return name, verr
}

type BookRequest struct {
	Title     *string `json:"title"`
	Pages     *int    `json:"pages"`
	Year      *int    `json:"year"`
	Price     *Price  `json:"price"`
	Link      *string `json:"link"`
	TagIDs    []int64 `json:"tags"`
	AuthorIDs []int64 `json:"authors"`
}

type AttributeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func ToAttributeResponse(attr *Attribute) AttributeResponse {
	return AttributeResponse{ID: attr.ID, Name: attr.Name}
}

func ToAttributeResponseList(attrs []Attribute) []AttributeResponse {
	out := make([]AttributeResponse, 0, len(attrs))
	for i := range attrs {
		out = append(out, ToAttributeResponse(&attrs[i]))
	}
	return out
}

// BookResponse is the list-form serialization: related tags and authors
// appear as id lists.
type BookResponse struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Pages   int     `json:"pages"`
	Year    int     `json:"year"`
	Tags    []int64 `json:"tags"`
	Authors []int64 `json:"authors"`
	Price   Price   `json:"price"`
	Link    string  `json:"link"`
	Image   *string `json:"image"`
}

// BookDetailResponse is the detail-form serialization: related tags and
// authors are embedded as objects.
type BookDetailResponse struct {
	ID      int64               `json:"id"`
	Title   string              `json:"title"`
	Pages   int                 `json:"pages"`
	Year    int                 `json:"year"`
	Tags    []AttributeResponse `json:"tags"`
	Authors []AttributeResponse `json:"authors"`
	Price   Price               `json:"price"`
	Link    string              `json:"link"`
	Image   *string             `json:"image"`
}

type BookImageResponse struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}

func ToBookResponse(book *Book, imageURL func(string) string) BookResponse {
	return BookResponse{
		ID:      book.ID,
		Title:   book.Title,
		Pages:   book.Pages,
		Year:    book.Year,
		Tags:    book.TagIDs,
		Authors: book.AuthorIDs,
		Price:   book.Price,
		Link:    book.Link,
		Image:   imageRef(book, imageURL),
	}
}

func ToBookResponseList(
	books []Book,
	imageURL func(string) string,
) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, ToBookResponse(&books[i], imageURL))
	}
	return out
}

func ToBookDetailResponse(
	detail *BookDetail,
	imageURL func(string) string,
) BookDetailResponse {
	return BookDetailResponse{
		ID:      detail.Book.ID,
		Title:   detail.Book.Title,
		Pages:   detail.Book.Pages,
		Year:    detail.Book.Year,
		Tags:    ToAttributeResponseList(detail.Tags),
		Authors: ToAttributeResponseList(detail.Authors),
		Price:   detail.Book.Price,
		Link:    detail.Book.Link,
		Image:   imageRef(&detail.Book, imageURL),
	}
}

func imageRef(book *Book, imageURL func(string) string) *string {
	if book.CoverPath == nil || *book.CoverPath == "" {
		return nil
	}
	url := imageURL(*book.CoverPath)
	return &url
}
