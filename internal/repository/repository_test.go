package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/salon-booking/internal/calendar"
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/model"
)

// openTestDB connects to the MySQL named by SALON_TEST_MYSQL_DSN, e.g.
// "root:pw@tcp(127.0.0.1:3306)/salon_test?parseTime=true&loc=UTC".  The
// tests are skipped without it.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("SALON_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("SALON_TEST_MYSQL_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestErrorsWrapNotFound(t *testing.T) {
	if !errors.Is(ErrServiceNotFound, ErrNotFound) || !errors.Is(ErrBookingNotFound, ErrNotFound) {
		t.Fatal("typed not-found errors must wrap ErrNotFound")
	}
	if ErrServiceNotFound.Error() != "service not found" {
		t.Errorf("message = %q", ErrServiceNotFound.Error())
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Mei@Example.COM "); got != "mei@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestBookingLifecycle_MySQL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	services := NewServiceRepo(db)
	bookings := NewBookingRepo(db)

	uid, err := users.Create(ctx, model.User{Email: uuid.NewString() + "@example.com", PasswordHash: "x", Name: "mei", IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	svc, err := services.GetByID(ctx, 2)
	if err != nil {
		t.Fatalf("seeded service: %v", err)
	}
	if svc.Name != "抗衰老面部护理" || svc.Price != 498 || svc.DurationMinutes != 90 {
		t.Fatalf("service = %+v", svc)
	}

	day := calendar.DateOf(time.Now().UTC()).AddDays(1)
	b, err := bookings.Create(ctx, model.Booking{UserID: uid, ServiceID: svc.ID, BookingDate: day, BookingTime: "10:00"})
	if err != nil {
		t.Fatal(err)
	}
	if b.ID == 0 || b.Status != model.StatusPending || !b.BookingDate.Equal(day) {
		t.Fatalf("created = %+v", b)
	}
	if busy, err := bookings.HasConflict(ctx, day, "10:00", svc.ID); err != nil || !busy {
		t.Fatalf("HasConflict = %v, %v", busy, err)
	}

	list, err := bookings.ListForUser(ctx, uid, "")
	if err != nil || len(list) != 1 || list[0].Service.Name != svc.Name {
		t.Fatalf("list = %+v, %v", list, err)
	}
	counts, err := bookings.CountByStatus(ctx, uid)
	if err != nil || counts[model.StatusPending] != 1 || counts[model.StatusCompleted] != 0 {
		t.Fatalf("counts = %v, %v", counts, err)
	}

	if _, _, err := bookings.Cancel(ctx, b.ID, uid+1000000); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("cancel by other user: %v", err)
	}
	got, prev, err := bookings.Cancel(ctx, b.ID, uid)
	if err != nil || prev != model.StatusPending || got.Status != model.StatusCancelled {
		t.Fatalf("cancel = %+v %s %v", got, prev, err)
	}
	if _, _, err := bookings.Cancel(ctx, b.ID, uid); !errors.Is(err, ErrConflict) {
		t.Fatalf("second cancel: %v", err)
	}
}
