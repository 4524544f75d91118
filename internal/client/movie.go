package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Movie 客户端电影记录
type Movie struct {
	ID          int
	Title       string
	Genre       string
	Duration    int
	Rating      float64
	Description string
	PosterURL   string
	IsNew       bool
	ViewsCount  int
	CreatedAt   time.Time
}

// DecodeError 响应体格式错误。Index 为数组下标，整体错误时为 -1
type DecodeError struct {
	Index  int
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	switch {
	case e.Index < 0 && e.Field == "":
		return "malformed response: " + e.Reason
	case e.Index < 0:
		return fmt.Sprintf("malformed response: field %q %s", e.Field, e.Reason)
	default:
		return fmt.Sprintf("malformed movie at index %d: field %q %s", e.Index, e.Field, e.Reason)
	}
}

// 服务端 created_at 可能不带时区
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// DecodeMovies 解析电影数组。任何一个元素缺少必填字段或类型错误，整个响应都会被拒绝
func DecodeMovies(body []byte) ([]Movie, error) {
	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{Index: -1, Reason: "invalid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, &DecodeError{Index: -1, Reason: "expected a JSON array"}
	}

	elems := root.Array()
	movies := make([]Movie, 0, len(elems))
	for i, elem := range elems {
		m, err := decodeMovie(i, elem)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// DecodeMovie 解析单个电影对象
func DecodeMovie(body []byte) (*Movie, error) {
	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{Index: -1, Reason: "invalid JSON"}
	}
	m, err := decodeMovie(-1, gjson.ParseBytes(body))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeMovie(index int, obj gjson.Result) (Movie, error) {
	fail := func(field, reason string) (Movie, error) {
		return Movie{}, &DecodeError{Index: index, Field: field, Reason: reason}
	}
	if !obj.IsObject() {
		return fail("", "is not an object")
	}

	var m Movie
	var err error

	if m.ID, err = intField(obj, "id"); err != nil {
		return fail("id", err.Error())
	}
	if m.Title, err = stringField(obj, "title"); err != nil {
		return fail("title", err.Error())
	}
	if m.Genre, err = stringField(obj, "genre"); err != nil {
		return fail("genre", err.Error())
	}
	if m.Duration, err = intField(obj, "duration"); err != nil {
		return fail("duration", err.Error())
	}

	// 整数与浮点数都接受
	rating := obj.Get("rating")
	if !rating.Exists() {
		return fail("rating", "is missing")
	}
	if rating.Type != gjson.Number {
		return fail("rating", "must be a number")
	}
	m.Rating = rating.Float()

	if m.Description, err = stringField(obj, "description"); err != nil {
		return fail("description", err.Error())
	}
	if m.PosterURL, err = stringField(obj, "poster_url"); err != nil {
		return fail("poster_url", err.Error())
	}

	// 以下字段可选
	switch isNew := obj.Get("is_new"); isNew.Type {
	case gjson.Null:
	case gjson.True, gjson.False:
		m.IsNew = isNew.Bool()
	default:
		return fail("is_new", "must be a boolean")
	}

	if views := obj.Get("views_count"); views.Exists() && views.Type != gjson.Null {
		if !isInteger(views) {
			return fail("views_count", "must be an integer")
		}
		m.ViewsCount = int(views.Int())
	}

	if created := obj.Get("created_at"); created.Exists() && created.Type != gjson.Null {
		if created.Type != gjson.String {
			return fail("created_at", "must be a string")
		}
		t, ok := parseTime(created.Str)
		if !ok {
			return fail("created_at", "is not a timestamp")
		}
		m.CreatedAt = t
	}

	return m, nil
}

func stringField(obj gjson.Result, name string) (string, error) {
	v := obj.Get(name)
	if !v.Exists() {
		return "", errMissing
	}
	if v.Type != gjson.String {
		return "", errNotString
	}
	return v.Str, nil
}

func intField(obj gjson.Result, name string) (int, error) {
	v := obj.Get(name)
	if !v.Exists() {
		return 0, errMissing
	}
	if !isInteger(v) {
		return 0, errNotInteger
	}
	return int(v.Int()), nil
}

func isInteger(v gjson.Result) bool {
	return v.Type == gjson.Number && !strings.ContainsAny(v.Raw, ".eE")
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

const (
	errMissing    fieldError = "is missing"
	errNotString  fieldError = "must be a string"
	errNotInteger fieldError = "must be an integer"
)
