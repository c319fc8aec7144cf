package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"vault/domain"
	"vault/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const defaultRecordLimit = 50

// NewRouter serves the read-only views of the vault and the metrics endpoint.
// journal may be nil, in which case /records is not served.
func NewRouter(vault *usecase.VaultInteractor, journal *usecase.JournalInteractor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/vault", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, vault.Status())
	})

	r.Get("/accounts/{account}", func(w http.ResponseWriter, req *http.Request) {
		account, err := domain.ParseAccount(chi.URLParam(req, "account"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status, err := vault.AccountStatus(account)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	if journal != nil {
		r.Get("/records", func(w http.ResponseWriter, req *http.Request) {
			limit := defaultRecordLimit
			if v := req.URL.Query().Get("limit"); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil || n <= 0 {
					writeError(w, http.StatusBadRequest, domain.ErrorInvalidAmount)
					return
				}
				limit = n
			}

			var account domain.Account
			if v := req.URL.Query().Get("account"); v != "" {
				parsed, err := domain.ParseAccount(v)
				if err != nil {
					writeError(w, http.StatusBadRequest, err)
					return
				}
				account = parsed
			}

			records, err := journal.History(account, limit)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, records)
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("🔴 writing response - %v", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
