package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mailroom-io/mailroom/internal/identity"
)

func TestIdentityRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IdentityRepository Suite")
}

type SQLiteSenderIdentity struct {
	ID           string    `gorm:"primaryKey"`
	DisplayName  string    `gorm:"column:display_name;not null"`
	EmailAddress string    `gorm:"column:email_address;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (SQLiteSenderIdentity) TableName() string {
	return "sender_identities"
}

type SQLiteSenderPermission struct {
	ID               string    `gorm:"primaryKey"`
	UserID           string    `gorm:"column:user_id;not null"`
	SenderIdentityID string    `gorm:"column:sender_identity_id;not null"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (SQLiteSenderPermission) TableName() string {
	return "user_sender_permissions"
}

type SQLiteEmailLog struct {
	ID               string `gorm:"primaryKey"`
	UserID           string `gorm:"column:user_id"`
	SenderIdentityID string `gorm:"column:sender_identity_id"`
}

func (SQLiteEmailLog) TableName() string {
	return "email_logs"
}

var _ = Describe("IdentityRepository", func() {
	var (
		db   *gorm.DB
		repo identity.RepositoryAPI
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteSenderIdentity{}, &SQLiteSenderPermission{}, &SQLiteEmailLog{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewIdentityRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create and GetByID", func() {
		It("should round-trip an identity", func() {
			ident := identity.NewSenderIdentity("Mailroom Support", "support@mailroom.dev")

			Expect(repo.Create(ident)).To(Succeed())

			found, err := repo.GetByID(ident.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.DisplayName).To(Equal("Mailroom Support"))
			Expect(found.IsActive).To(BeTrue())
		})

		It("should report a typed not-found error", func() {
			_, err := repo.GetByID(uuid.New())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateActive", func() {
		It("should persist the flag", func() {
			ident := identity.NewSenderIdentity("Toggler", "toggle@mailroom.dev")
			Expect(repo.Create(ident)).To(Succeed())

			Expect(repo.UpdateActive(ident.ID, false)).To(Succeed())

			found, err := repo.GetByID(ident.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.IsActive).To(BeFalse())
		})
	})

	Describe("GetActiveGrantedTo", func() {
		var userID uuid.UUID

		grantRow := func(userID, identityID uuid.UUID) {
			Expect(db.Exec(
				"INSERT INTO user_sender_permissions (id, user_id, sender_identity_id, created_at) VALUES (?, ?, ?, ?)",
				uuid.NewString(), userID.String(), identityID.String(), time.Now(),
			).Error).To(Succeed())
		}

		BeforeEach(func() {
			userID = uuid.New()
		})

		It("should return only granted, active identities", func() {
			granted := identity.NewSenderIdentity("Granted", "granted@mailroom.dev")
			inactive := identity.NewSenderIdentity("Inactive", "inactive@mailroom.dev")
			inactive.IsActive = false
			ungranted := identity.NewSenderIdentity("Ungranted", "ungranted@mailroom.dev")

			for _, i := range []*identity.SenderIdentity{granted, inactive, ungranted} {
				Expect(repo.Create(i)).To(Succeed())
			}
			grantRow(userID, granted.ID)
			grantRow(userID, inactive.ID)

			identities, err := repo.GetActiveGrantedTo(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(identities).To(HaveLen(1))
			Expect(identities[0].ID).To(Equal(granted.ID))
		})

		It("should collapse duplicate grant rows", func() {
			ident := identity.NewSenderIdentity("Dup", "dup@mailroom.dev")
			Expect(repo.Create(ident)).To(Succeed())
			grantRow(userID, ident.ID)
			grantRow(userID, ident.ID)

			identities, err := repo.GetActiveGrantedTo(userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(identities).To(HaveLen(1))
		})
	})

	Describe("CountLogReferences", func() {
		It("should count send-log rows referencing the identity", func() {
			ident := identity.NewSenderIdentity("Referenced", "ref@mailroom.dev")
			Expect(repo.Create(ident)).To(Succeed())

			Expect(db.Exec(
				"INSERT INTO email_logs (id, user_id, sender_identity_id) VALUES (?, ?, ?)",
				uuid.NewString(), uuid.NewString(), ident.ID.String(),
			).Error).To(Succeed())

			count, err := repo.CountLogReferences(ident.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should report zero for an unreferenced identity", func() {
			ident := identity.NewSenderIdentity("Clean", "clean@mailroom.dev")
			Expect(repo.Create(ident)).To(Succeed())

			count, err := repo.CountLogReferences(ident.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Describe("Delete", func() {
		It("should remove the row", func() {
			ident := identity.NewSenderIdentity("Removable", "removable@mailroom.dev")
			Expect(repo.Create(ident)).To(Succeed())

			Expect(repo.Delete(ident.ID)).To(Succeed())

			_, err := repo.GetByID(ident.ID)
			Expect(err).To(HaveOccurred())
		})
	})
})
