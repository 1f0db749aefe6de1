package middleware

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	pkgvalidator "github.com/jwalitptl/optica-admin/pkg/validator"
)

var bindingOnce sync.Once

// ConfigureBinding makes gin validate request bodies with the same `validate`
// tags and JSON field names the console forms use.
func ConfigureBinding() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.SetTagName("validate")
			pkgvalidator.Configure(v)
		}
	})
}
