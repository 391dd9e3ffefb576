package recipe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alchemorsel/foodgram/internal/domain/shared"
)

// Query parameter names understood by ParseFilter.
const (
	ParamTags             = "tags"
	ParamAuthor           = "author"
	ParamIsFavorited      = "is_favorited"
	ParamIsInShoppingCart = "is_in_shopping_cart"

	// AuthorMe is resolved to the viewer's own id.
	AuthorMe = "me"
)

// ErrAnonymousAuthorMe is returned when an anonymous viewer asks for author=me.
var ErrAnonymousAuthorMe = errors.New("author=me requires an authenticated user")

// TriState is a boolean filter that may also be left unset.
type TriState int

const (
	Unset TriState = iota
	True
	False
)

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}

// InvalidFilterError reports a present but unparseable query value.
type InvalidFilterError struct {
	Param string
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Param)
}

// ParseTriState normalizes a boolean-like token. Blank input is Unset; any
// other unrecognised token is an error.
func ParseTriState(raw string) (TriState, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return Unset, nil
	case "1", "yes", "true":
		return True, nil
	case "0", "no", "false":
		return False, nil
	default:
		return Unset, fmt.Errorf("unrecognised boolean token %q", raw)
	}
}

// AuthorRef is the parsed author parameter.
type AuthorRef struct {
	id int64
	me bool
}

// IsSet reports whether an author filter was requested.
func (a AuthorRef) IsSet() bool { return a.me || a.id > 0 }

// IsMe reports whether the filter refers to the viewer.
func (a AuthorRef) IsMe() bool { return a.me }

// ID returns the explicit author id, or 0.
func (a AuthorRef) ID() int64 { return a.id }

// AuthorID builds an explicit author reference.
func AuthorID(id int64) AuthorRef { return AuthorRef{id: id} }

// AuthorSelf builds the "me" reference.
func AuthorSelf() AuthorRef { return AuthorRef{me: true} }

// ParseAuthor accepts a positive integer or "me". Blank input means no filter.
func ParseAuthor(raw string) (AuthorRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AuthorRef{}, nil
	}
	if raw == AuthorMe {
		return AuthorSelf(), nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return AuthorRef{}, &InvalidFilterError{Param: ParamAuthor, Value: raw}
	}
	return AuthorID(id), nil
}

// Filter is the set of listing predicates requested by a client.
type Filter struct {
	Tags             []string
	Author           AuthorRef
	IsFavorited      TriState
	IsInShoppingCart TriState
}

// ParseFilter reads a Filter from query values. tags may be repeated or
// comma separated; duplicates are dropped.
func ParseFilter(query map[string][]string) (Filter, error) {
	var f Filter

	seen := make(map[string]struct{})
	for _, value := range query[ParamTags] {
		for _, slug := range strings.Split(value, ",") {
			slug = strings.TrimSpace(slug)
			if slug == "" {
				continue
			}
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			f.Tags = append(f.Tags, slug)
		}
	}

	author, err := ParseAuthor(first(query[ParamAuthor]))
	if err != nil {
		return Filter{}, err
	}
	f.Author = author

	if f.IsFavorited, err = parseTriParam(query, ParamIsFavorited); err != nil {
		return Filter{}, err
	}
	if f.IsInShoppingCart, err = parseTriParam(query, ParamIsInShoppingCart); err != nil {
		return Filter{}, err
	}

	return f, nil
}

func parseTriParam(query map[string][]string, param string) (TriState, error) {
	raw := first(query[param])
	state, err := ParseTriState(raw)
	if err != nil {
		return Unset, &InvalidFilterError{Param: param, Value: raw}
	}
	return state, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Criteria is a Filter with every viewer-relative reference resolved.
type Criteria struct {
	TagSlugs         []string
	AuthorID         int64
	IsFavorited      TriState
	IsInShoppingCart TriState
}

// Resolve binds the filter to viewer, turning author=me into an id.
func (f Filter) Resolve(viewer shared.Viewer) (Criteria, error) {
	c := Criteria{
		TagSlugs:         f.Tags,
		AuthorID:         f.Author.ID(),
		IsFavorited:      f.IsFavorited,
		IsInShoppingCart: f.IsInShoppingCart,
	}
	if f.Author.IsMe() {
		if !viewer.IsAuthenticated() {
			return Criteria{}, ErrAnonymousAuthorMe
		}
		c.AuthorID = viewer.UserID
	}
	return c, nil
}
