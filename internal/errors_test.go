package internal_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/pix-checkout/internal"
)

var _ = Describe("AppError", func() {
	It("matches sentinels by code through wrapping", func() {
		err := fmt.Errorf("lookup: %w", internal.NewNotFoundError("no charge tx-1", internal.ErrCodeChargeNotFound))
		Expect(errors.Is(err, internal.ErrChargeNotFound)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrIdentityNotFound)).To(BeFalse())
	})

	It("unwraps to its cause", func() {
		cause := errors.New("connection refused")
		err := internal.NewExternalError("failed to create charge", internal.ErrCodeChargeCreationFailed, cause)

		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(err.Error()).To(Equal("failed to create charge: connection refused"))
		Expect(err.Type).To(Equal(internal.ErrorTypeExternal))
	})

	It("marks payload build failures with their own code", func() {
		err := internal.NewPayloadBuildError("failed to render qr code", errors.New("too long"))
		appErr, ok := internal.IsAppError(fmt.Errorf("generate: %w", err))
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodePayloadBuildFailed))
		Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
	})

	It("reports the first field message for validation details", func() {
		err := internal.NewValidationFieldError("orderId", "orderId is required", internal.ErrCodeValidationFailed)
		Expect(err.Error()).To(Equal("orderId is required"))
		Expect(err.Code).To(Equal(internal.ErrCodeValidationFailed))
	})

	It("is not found in plain errors", func() {
		_, ok := internal.IsAppError(errors.New("plain"))
		Expect(ok).To(BeFalse())
	})
})
