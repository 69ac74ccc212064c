/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/tomoncle/lister"
	"github.com/tomoncle/lister/database"
	"github.com/tomoncle/lister/paginate"
	"github.com/tomoncle/lister/repository"
	"github.com/tomoncle/lister/utils"
)

var log = utils.NewLogger("HTTP")

var badRequestErrors = []error{
	paginate.ErrMalformedRequest,
	repository.ErrInvalidPagination,
	repository.ErrInvalidOrder,
	repository.ErrUnsupportedOperator,
	repository.ErrUnsupportedRelation,
}

// List serves the query string of each request as a list request against svc
// and writes the resulting {meta, data} envelope.
func List[T any](svc lister.Service[T], opts paginate.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := paginate.ParseRequest(r.URL.Query())
		env, err := svc.Page(r.Context(), opts, req)
		if err != nil {
			status := StatusOf(err)
			log.WithFields(logrus.Fields{"path": r.URL.Path, "query": r.URL.RawQuery, "status": status}).
				WithError(err).Warn("list request failed")
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusOK, env)
	}
}

// Health reports the state of the global database connection.
func Health(w http.ResponseWriter, r *http.Request) {
	status := database.GetHealthStatus(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// StatusOf maps a list error to an HTTP status code. Request shapes the
// store refuses, and statements naming unknown columns or tables, are the
// client's fault.
func StatusOf(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	if is, kind := database.IsSqlError(err); is && kind.IsClientError() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
