package einvoice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// invoiceAttachmentNames are the attachment names defined by ZUGFeRD 1/2,
// Factur-X and XRechnung for the embedded invoice, lower-cased.
var invoiceAttachmentNames = []string{
	"factur-x.xml",
	"zugferd-invoice.xml",
	"xrechnung.xml",
}

var disableConfigDir sync.Once

// embeddedInvoiceXML returns the embedded invoice XML of a hybrid PDF and the
// attachment name it was found under.
func embeddedInvoiceXML(data []byte) (out []byte, name string, err error) {
	// pdfcpu panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			out, name, err = nil, "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	attachments, err := api.ExtractAttachmentsRaw(bytes.NewReader(data), "", nil, conf)
	if err != nil {
		return nil, "", fmt.Errorf("read attachments: %w", err)
	}

	byName := make(map[string]model.Attachment, len(attachments))
	for _, a := range attachments {
		byName[strings.ToLower(a.FileName)] = a
	}
	for _, want := range invoiceAttachmentNames {
		a, ok := byName[want]
		if !ok {
			continue
		}
		b, err := io.ReadAll(a)
		if err != nil {
			return nil, "", fmt.Errorf("read attachment %s: %w", a.FileName, err)
		}
		return b, a.FileName, nil
	}
	return nil, "", errors.New("no embedded invoice attachment")
}
