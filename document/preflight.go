package document

import (
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"
)

var disableConfigDir sync.Once

// preflight validates the file with pdfcpu in relaxed mode so structurally
// broken documents are rejected before any page is touched.
func preflight(path, password string) error {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
	}
	if err := api.ValidateFile(path, conf); err != nil {
		return eris.Wrap(err, "validate document")
	}
	return nil
}
