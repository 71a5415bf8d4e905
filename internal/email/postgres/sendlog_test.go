package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mailroom-io/mailroom/internal/email"
)

func TestSendLogRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SendLogRepository Suite")
}

type SQLiteSendLog struct {
	ID               string    `gorm:"primaryKey"`
	UserID           string    `gorm:"column:user_id;not null"`
	SenderIdentityID string    `gorm:"column:sender_identity_id;not null"`
	Recipients       []byte    `gorm:"column:recipients"`
	Subject          string    `gorm:"not null"`
	HTMLContentHash  string    `gorm:"column:html_content_hash;not null"`
	SentAt           time.Time `gorm:"column:sent_at"`
	DeliveryStatus   string    `gorm:"column:delivery_status;not null"`
	ErrorMessage     *string   `gorm:"column:error_message"`
}

func (SQLiteSendLog) TableName() string {
	return "email_logs"
}

var _ = Describe("SendLogRepository", func() {
	var (
		db   *gorm.DB
		repo email.LogRepositoryAPI
	)

	newEntry := func(userID uuid.UUID, sentAt time.Time, status string) *email.SendLog {
		return &email.SendLog{
			ID:               uuid.New(),
			UserID:           userID,
			SenderIdentityID: uuid.New(),
			Recipients:       email.RecipientList{"alice@example.com"},
			Subject:          "Hello",
			HTMLContentHash:  email.HashContent("<p>Hi</p>"),
			SentAt:           sentAt,
			DeliveryStatus:   status,
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteSendLog{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewSendLogRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create", func() {
		It("should persist a sent entry", func() {
			entry := newEntry(uuid.New(), time.Now(), email.DeliveryStatusSent)

			Expect(repo.Create(entry)).To(Succeed())

			var count int64
			Expect(db.Table("email_logs").Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})

		It("should persist the error message of a failed entry", func() {
			entry := newEntry(uuid.New(), time.Now(), email.DeliveryStatusFailed)
			msg := "SMTP timeout"
			entry.ErrorMessage = &msg

			Expect(repo.Create(entry)).To(Succeed())

			logs, err := repo.GetAll(10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].ErrorMessage).NotTo(BeNil())
			Expect(*logs[0].ErrorMessage).To(Equal("SMTP timeout"))
		})

		It("should round-trip the recipient list", func() {
			entry := newEntry(uuid.New(), time.Now(), email.DeliveryStatusSent)
			entry.Recipients = email.RecipientList{"alice@example.com", "bob@example.com"}

			Expect(repo.Create(entry)).To(Succeed())

			logs, err := repo.GetAll(10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect([]string(logs[0].Recipients)).To(Equal([]string{"alice@example.com", "bob@example.com"}))
		})
	})

	Describe("GetAll", func() {
		It("should order newest first and paginate", func() {
			base := time.Now()
			for i := 0; i < 3; i++ {
				entry := newEntry(uuid.New(), base.Add(time.Duration(i)*time.Minute), email.DeliveryStatusSent)
				entry.Subject = []string{"first", "second", "third"}[i]
				Expect(repo.Create(entry)).To(Succeed())
			}

			logs, err := repo.GetAll(2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(2))
			Expect(logs[0].Subject).To(Equal("third"))
			Expect(logs[1].Subject).To(Equal("second"))

			rest, err := repo.GetAll(2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(rest).To(HaveLen(1))
			Expect(rest[0].Subject).To(Equal("first"))
		})
	})

	Describe("GetByUserID", func() {
		It("should only return the user's own entries", func() {
			mine := uuid.New()
			other := uuid.New()
			Expect(repo.Create(newEntry(mine, time.Now(), email.DeliveryStatusSent))).To(Succeed())
			Expect(repo.Create(newEntry(other, time.Now(), email.DeliveryStatusFailed))).To(Succeed())

			logs, err := repo.GetByUserID(mine, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].UserID).To(Equal(mine))
		})
	})
})
