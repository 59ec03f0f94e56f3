package extractor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PDFExtractor pulls document metadata out of PDF bytes.
type PDFExtractor struct {
	conf *pdfmodel.Configuration
}

var _ Extractor = (*PDFExtractor)(nil)

func NewPDFExtractor() *PDFExtractor {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &PDFExtractor{conf: conf}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (res Result) {
	// pdfcpu parse faults on corrupt input must not cross the boundary.
	defer func() {
		if r := recover(); r != nil {
			zap.S().Named("extractor").Errorw("pdf parser panicked", "panic", r)
			res = Failure(fmt.Sprintf("pdf parser fault: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return Failure(err.Error())
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), e.conf)
	if err != nil {
		return Failure(errors.Wrap(err, "reading pdf").Error())
	}

	if err := api.ValidateContext(pdfCtx); err != nil {
		return Failure(errors.Wrap(err, "validating pdf").Error())
	}

	fields := map[string]any{
		"page_count": pdfCtx.PageCount,
	}
	if pdfCtx.HeaderVersion != nil {
		fields["pdf_version"] = pdfCtx.HeaderVersion.String()
	}

	for key, value := range map[string]string{
		"title":         pdfCtx.Title,
		"author":        pdfCtx.Author,
		"subject":       pdfCtx.Subject,
		"creator":       pdfCtx.Creator,
		"producer":      pdfCtx.Producer,
		"creation_date": pdfCtx.XRefTable.CreationDate,
		"mod_date":      pdfCtx.XRefTable.ModDate,
	} {
		if value != "" {
			fields[key] = value
		}
	}

	return Result{Success: true, Data: fields}
}
