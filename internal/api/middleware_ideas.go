package api

import (
	"math"
	"net/http"

	"github.com/bossmachine/bossmachine/internal/core"
	"github.com/bossmachine/bossmachine/internal/store"
)

// checkMillionDollarIdea rejects idea bodies that are not worth at least
// store.MinIdeaValue with 400 and no body. It looks only at the request, never
// at a stored idea.
func checkMillionDollarIdea(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ideaValue(fieldsFrom(r)); !ok {
			core.Empty(w, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ideaValue computes numWeeks * weeklyRevenue and reports whether it clears
// the threshold. Missing or falsy factors never do.
func ideaValue(f store.Fields) (float64, bool) {
	numWeeks, weeklyRevenue := f["numWeeks"], f["weeklyRevenue"]
	if !store.Truthy(numWeeks) || !store.Truthy(weeklyRevenue) {
		return 0, false
	}
	total := store.ToNumber(numWeeks) * store.ToNumber(weeklyRevenue)
	if math.IsNaN(total) || total < store.MinIdeaValue {
		return total, false
	}
	return total, true
}
