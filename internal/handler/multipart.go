package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/farisali522/birojasaapp/internal/service"
)

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// parseDocumentUploads collects the files posted as doc_<documentTypeID>.
// The returned cleanup closes every opened file and must always be deferred.
func parseDocumentUploads(r *http.Request) ([]service.DocumentUpload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}

	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	var uploads []service.DocumentUpload
	for key, headers := range r.MultipartForm.File {
		if !strings.HasPrefix(key, "doc_") || len(headers) == 0 {
			continue
		}
		typeID, err := strconv.ParseInt(strings.TrimPrefix(key, "doc_"), 10, 64)
		if err != nil {
			cleanup()
			return nil, noop, errors.New("invalid document field: " + key)
		}
		file, err := headers[0].Open()
		if err != nil {
			cleanup()
			return nil, noop, err
		}
		opened = append(opened, file)
		uploads = append(uploads, service.DocumentUpload{
			DocumentTypeID: typeID,
			Filename:       headers[0].Filename,
			Content:        file,
		})
	}
	return uploads, cleanup, nil
}
