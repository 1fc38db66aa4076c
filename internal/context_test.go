package internal_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/sensor-monitoring/internal"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

var _ = Describe("context helpers", func() {
	It("should round-trip the username", func() {
		ctx := internal.ContextWithUsername(context.Background(), "alice")
		Expect(internal.UsernameFromContext(ctx)).To(Equal("alice"))
	})

	It("should answer empty for an untagged or nil context", func() {
		Expect(internal.UsernameFromContext(context.Background())).To(BeEmpty())
		Expect(internal.UsernameFromContext(nil)).To(BeEmpty())
	})

	Describe("WithTimeout", func() {
		It("should honor the requested duration", func() {
			ctx, cancel := internal.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			deadline, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			Expect(time.Until(deadline)).To(BeNumerically(">", 50*time.Second))
		})

		It("should fall back to a sane default for a non-positive duration", func() {
			ctx, cancel := internal.WithTimeout(context.Background(), 0)
			defer cancel()

			deadline, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			Expect(time.Until(deadline)).To(BeNumerically("<=", 5*time.Second))
		})
	})
})
