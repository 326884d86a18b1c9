package echoapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/importer"
)

const templateFilename = "student_import_template.csv"

// multipartOverhead leaves room for boundaries and part headers on top of the file size cap.
const multipartOverhead = 64 << 10

var errNotCSV = core.NewFieldValidationError("file", "only CSV files are allowed")

type importApi struct {
	svc     *importer.Service
	conf    *core.Config
	logger  core.Logger
	metrics *metrics
}

func registerImportAPI(g *echo.Group, jwt, admin echo.MiddlewareFunc, s *Server) {
	api := importApi{svc: s.deps.ImportSvc, conf: s.deps.Conf, logger: s.deps.Logger, metrics: s.metrics}

	ig := g.Group("/mentees/import", jwt, admin)
	ig.POST("", api.upload, middleware.BodyLimit(fmt.Sprintf("%dB", s.deps.Conf.Upload.MaxSize+multipartOverhead)))
	ig.GET("/template", api.template)
}

func (api *importApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewFieldValidationError("file", "this field is required")
	}
	if fh.Size > api.conf.Upload.MaxSize {
		return echo.ErrStatusRequestEntityTooLarge
	}
	if !isCSV(fh.Filename, fh.Header.Get(echo.HeaderContentType)) {
		return errNotCSV
	}

	path, err := api.save(fh)
	if err != nil {
		return errors.Wrap(err, "saving upload")
	}

	rep, err := api.svc.ImportFile(ctx.Request().Context(), path)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	api.logger.Info(fmt.Sprintf("student import %q: %s", fh.Filename, rep.Summary))
	api.metrics.importRows.WithLabelValues(importer.OutcomeCreated).Add(float64(rep.Summary.Created))
	api.metrics.importRows.WithLabelValues(importer.OutcomeUpdated).Add(float64(rep.Summary.Updated))
	api.metrics.importRows.WithLabelValues(importer.OutcomeFailed).Add(float64(rep.Summary.Failed))

	return ctx.JSON(http.StatusOK, rep)
}

// save copies the uploaded file into the upload dir; the importer removes it once processed.
func (api *importApi) save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(api.conf.Upload.Dir, 0o750); err != nil {
		return "", err
	}
	dst, err := os.CreateTemp(api.conf.Upload.Dir, "import-*.csv")
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(dst, src); err == nil {
		err = dst.Close()
	} else {
		_ = dst.Close()
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func (api *importApi) template(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", templateFilename))
	return ctx.Blob(http.StatusOK, "text/csv", importer.Template())
}

func isCSV(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(contentType), "text/csv")
}
