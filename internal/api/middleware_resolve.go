package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bossmachine/bossmachine/internal/core"
	"github.com/bossmachine/bossmachine/internal/store"
)

type ctxKey int

const (
	fieldsKey ctxKey = iota
	minionKey
	ideaKey
	workKey
)

// errNotObject is returned for request bodies that are valid JSON but not an
// object.
var errNotObject = errors.New("request body must be a JSON object")

// decodeFields parses the JSON request body into store.Fields. An empty body
// or null decodes to no fields; anything that is not an object is rejected
// with 400 and no body.
func decodeFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := readFields(r.Body)
		if err != nil {
			core.Empty(w, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), fieldsKey, f)))
	})
}

func readFields(body io.Reader) (store.Fields, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(data) == 0 {
		return store.Fields{}, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	switch x := v.(type) {
	case nil:
		return store.Fields{}, nil
	case map[string]any:
		return store.Fields(x), nil
	default:
		return nil, errNotObject
	}
}

func fieldsFrom(r *http.Request) store.Fields {
	f, _ := r.Context().Value(fieldsKey).(store.Fields)
	if f == nil {
		return store.Fields{}
	}
	return f
}

// resolveMinion loads the minion named by {minionId} into the request
// context, or answers 404.
func (h *Handler) resolveMinion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, ok := h.store.GetMinion(chi.URLParam(r, "minionId"))
		if !ok {
			core.Error(w, http.StatusNotFound, "Minion not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), minionKey, m)))
	})
}

// resolveIdea loads the idea named by {ideaId} into the request context, or
// answers 404.
func (h *Handler) resolveIdea(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i, ok := h.store.GetIdea(chi.URLParam(r, "ideaId"))
		if !ok {
			core.Error(w, http.StatusNotFound, "Idea not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ideaKey, i)))
	})
}

// resolveWork loads the work item named by {workId}. It must run after
// resolveMinion; work owned by another minion is not found.
func (h *Handler) resolveWork(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		work, ok := h.store.GetWork(chi.URLParam(r, "workId"))
		if !ok || work.MinionID != minionFrom(r).ID {
			core.Error(w, http.StatusNotFound, "Work not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workKey, work)))
	})
}

func minionFrom(r *http.Request) store.Minion {
	m, _ := r.Context().Value(minionKey).(store.Minion)
	return m
}

func ideaFrom(r *http.Request) store.Idea {
	i, _ := r.Context().Value(ideaKey).(store.Idea)
	return i
}

func workFrom(r *http.Request) store.Work {
	w, _ := r.Context().Value(workKey).(store.Work)
	return w
}
