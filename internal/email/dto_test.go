package email_test

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/email"
)

var _ = Describe("SendEmailDTO", func() {
	var dto email.SendEmailDTO

	BeforeEach(func() {
		dto = email.SendEmailDTO{
			SenderIdentityID: uuid.NewString(),
			To:               "alice@example.com",
			Subject:          "Hello",
			HTML:             "<p>Hi</p>",
		}
	})

	Describe("ParseRecipients", func() {
		It("should split on commas, trim whitespace and drop empties", func() {
			out := email.ParseRecipients(" alice@example.com , ,bob@example.com,")
			Expect(out).To(Equal([]string{"alice@example.com", "bob@example.com"}))
		})

		It("should return nil for an empty string", func() {
			Expect(email.ParseRecipients("")).To(BeNil())
		})
	})

	Describe("Parse", func() {
		It("should accept a complete request", func() {
			req, err := dto.Parse()

			Expect(err).ToNot(HaveOccurred())
			Expect(req.To).To(HaveLen(1))
			Expect(req.SenderIdentityID.String()).To(Equal(dto.SenderIdentityID))
		})

		It("should reject a malformed identity ID", func() {
			dto.SenderIdentityID = "42"

			_, err := dto.Parse()

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("invalid sender identity ID"))
		})

		It("should reject recipient strings that reduce to nothing", func() {
			dto.To = " , , "

			_, err := dto.Parse()

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("At least one recipient is required"))
		})

		It("should reject a blank subject", func() {
			dto.Subject = "   "

			_, err := dto.Parse()
			Expect(err).To(HaveOccurred())
		})

		It("should reject an empty body", func() {
			dto.HTML = ""

			_, err := dto.Parse()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("HashContent", func() {
		It("should be deterministic and sensitive to content", func() {
			a := email.HashContent("<p>one</p>")
			b := email.HashContent("<p>one</p>")
			c := email.HashContent("<p>two</p>")

			Expect(a).To(Equal(b))
			Expect(a).ToNot(Equal(c))
			Expect(a).To(HaveLen(64))
		})
	})
})
