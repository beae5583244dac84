package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/auth"
	"github.com/Leganyst/space-booking/internal/clock"
	"github.com/Leganyst/space-booking/internal/events"
	"github.com/Leganyst/space-booking/internal/model"
	"github.com/Leganyst/space-booking/internal/repository"
	"github.com/Leganyst/space-booking/internal/testutil"
)

var day = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	clock     *clock.FakeClock
	published *testutil.Publisher
	identity  *IdentityService
	catalog   *CatalogService
	bookings  *BookingService
	audit     *AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clk := clock.Fake(day.Add(8 * time.Hour))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := testutil.NewPublisher()
	tokens := auth.NewTokenIssuer("secret", time.Hour, clk)

	return &fixture{
		db:        db,
		clock:     clk,
		published: pub,
		identity:  NewIdentityService(repository.NewGormUserRepository(db), tokens, 4),
		catalog:   NewCatalogService(repository.NewGormSpaceRepository(db), time.UTC),
		bookings:  NewBookingService(repository.NewGormBookingRepository(db), pub, clk, time.UTC, log),
		audit:     NewAuditService(repository.NewGormEventRepository(db)),
	}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := f.identity.Register(context.Background(), name, "pw")
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func (f *fixture) space(t *testing.T, name string) *model.Space {
	t.Helper()
	sp, err := f.catalog.Create(context.Background(), SpaceFields{Name: &name})
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	return sp
}

func (f *fixture) spaceStatus(t *testing.T, id uuid.UUID) model.SpaceStatus {
	t.Helper()
	var sp model.Space
	if err := f.db.First(&sp, "id = ?", id).Error; err != nil {
		t.Fatalf("load space: %v", err)
	}
	return sp.Status
}

func ptr(s string) *string { return &s }

func at(hour, minute int) string {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute).Format(time.RFC3339)
}

func wantKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperror.KindOf(err); got != kind {
		t.Fatalf("kind = %s, want %s (err: %v)", got, kind, err)
	}
}

func TestIdentity_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "alice")
	if u.Role != model.RoleUser {
		t.Fatalf("role = %q, want user", u.Role)
	}
	if u.PasswordHash == "pw" {
		t.Fatalf("password stored in clear")
	}

	tok, err := f.identity.Login(ctx, "alice", "pw")
	if err != nil || tok == "" {
		t.Fatalf("login: tok=%q err=%v", tok, err)
	}

	if _, err := f.identity.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.identity.Login(ctx, "nobody", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
	_, err = f.identity.Login(ctx, "alice", "")
	wantKind(t, err, apperror.KindValidation)
}

func TestIdentity_RegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice")

	_, err := f.identity.Register(ctx, "alice", "other")
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	wantKind(t, err, apperror.KindConflict)

	_, err = f.identity.Register(ctx, "  ", "pw")
	wantKind(t, err, apperror.KindValidation)

	_, err = f.identity.Register(ctx, strings.Repeat("a", model.MaxUsernameLen+1), "pw")
	wantKind(t, err, apperror.KindValidation)

	// ровно по ширине колонки и многобайтовые символы проходят
	if _, err := f.identity.Register(ctx, strings.Repeat("я", model.MaxUsernameLen), "pw"); err != nil {
		t.Fatalf("register max-length username: %v", err)
	}
}

func TestIdentity_PromoteAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice")

	u, err := f.identity.PromoteAdmin(ctx, "alice")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !u.Role.IsAdmin() {
		t.Fatalf("role = %q", u.Role)
	}

	_, err = f.identity.PromoteAdmin(ctx, "ghost")
	wantKind(t, err, apperror.KindNotFound)
}

func TestCatalog_CreateRoundTripsThroughList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.catalog.Create(ctx, SpaceFields{
		Name:       ptr("Room 101"),
		Location:   ptr("Main building"),
		UsageNotes: ptr("No food"),
		ImageURL:   ptr("http://img/101.png"),
		StartTime:  ptr("2030-01-01T09:00:00Z"),
		EndTime:    ptr("2030-01-01T18:00:00Z"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != model.SpaceStatusAvailable {
		t.Fatalf("new space status = %q", created.Status)
	}

	page, err := f.catalog.List(ctx, SpaceQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(page.Items))
	}
	got := page.Items[0]
	if got.ID != created.ID || got.Name != "Room 101" || got.Location != "Main building" ||
		got.UsageNotes != "No food" || got.ImageURL != "http://img/101.png" {
		t.Fatalf("listed space differs: %+v", got)
	}
	if got.StartTime == nil || !got.StartTime.Equal(*created.StartTime) || !got.EndTime.Equal(*created.EndTime) {
		t.Fatalf("window differs: %v-%v", got.StartTime, got.EndTime)
	}
}

func TestCatalog_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Create(ctx, SpaceFields{Location: ptr("HQ")})
	wantKind(t, err, apperror.KindValidation)

	_, err = f.catalog.Create(ctx, SpaceFields{Name: ptr("A"), StartTime: ptr(at(10, 0))})
	wantKind(t, err, apperror.KindValidation)

	_, err = f.catalog.List(ctx, SpaceQuery{Status: "broken"})
	wantKind(t, err, apperror.KindValidation)

	_, err = f.catalog.Update(ctx, "not-a-uuid", SpaceFields{Name: ptr("x")})
	wantKind(t, err, apperror.KindValidation)

	_, err = f.catalog.Update(ctx, uuid.NewString(), SpaceFields{Name: ptr("x")})
	if !errors.Is(err, ErrSpaceNotFound) {
		t.Fatalf("expected ErrSpaceNotFound, got %v", err)
	}

	err = f.catalog.Delete(ctx, uuid.NewString())
	if !errors.Is(err, ErrSpaceNotFound) {
		t.Fatalf("expected ErrSpaceNotFound, got %v", err)
	}
}

func TestCatalog_UpdateIsPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sp, err := f.catalog.Create(ctx, SpaceFields{Name: ptr("Room"), Location: ptr("HQ")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.catalog.Update(ctx, sp.ID.String(), SpaceFields{UsageNotes: ptr("quiet")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Room" || updated.Location != "HQ" || updated.UsageNotes != "quiet" {
		t.Fatalf("unexpected space after update: %+v", updated)
	}
}

func TestCatalog_ListPaginated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, n := range []string{"A", "B", "C"} {
		f.space(t, n)
	}

	page, err := f.catalog.List(ctx, SpaceQuery{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Total != 3 || page.HasNext || !page.HasPrev {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestCatalog_SeedFromFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.space(t, "Room 101")

	path := filepath.Join(t.TempDir(), "seed.yaml")
	body := "spaces:\n  - name: Room 101\n    location: HQ\n  - name: Room 102\n    location: HQ\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	n, err := f.catalog.SeedFromFile(ctx, path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 1 {
		t.Fatalf("created = %d, want 1", n)
	}

	n, err = f.catalog.SeedFromFile(ctx, path)
	if err != nil || n != 0 {
		t.Fatalf("second seed: n=%d err=%v", n, err)
	}
}

func TestCatalog_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sp := f.space(t, "Room")

	got, err := f.catalog.Get(ctx, sp.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != sp.ID || got.Name != "Room" || got.Status != model.SpaceStatusAvailable {
		t.Fatalf("space = %+v", got)
	}

	if _, err := f.catalog.Get(ctx, uuid.NewString()); !errors.Is(err, ErrSpaceNotFound) {
		t.Fatalf("expected ErrSpaceNotFound, got %v", err)
	}
	_, err = f.catalog.Get(ctx, "nope")
	wantKind(t, err, apperror.KindValidation)
}

func TestAudit_ForSpace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	sp := f.space(t, "Room")
	other := f.space(t, "Other")

	if _, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.bookings.Book(ctx, alice.ID, other.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book other: %v", err)
	}
	if _, err := f.bookings.Cancel(ctx, alice.ID, sp.ID.String()); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	evs, err := f.audit.ForSpace(ctx, sp.ID.String())
	if err != nil {
		t.Fatalf("for space: %v", err)
	}
	if len(evs) != 2 ||
		evs[0].EventType != model.EventTypeBookingCreated ||
		evs[1].EventType != model.EventTypeBookingCancelled {
		t.Fatalf("events = %+v", evs)
	}

	_, err = f.audit.ForSpace(ctx, "nope")
	wantKind(t, err, apperror.KindValidation)
}

func TestCatalog_DeleteCascadesBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	sp := f.space(t, "Room")

	if _, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}
	if err := f.catalog.Delete(ctx, sp.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	views, err := f.bookings.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("bookings survived space deletion: %d", len(views))
	}
}

func TestBooking_BookReservesSpace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	sp := f.space(t, "Room")

	b, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0))
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if b.Status != model.BookingStatusBooked || b.ID == uuid.Nil {
		t.Fatalf("unexpected booking %+v", b)
	}
	if st := f.spaceStatus(t, sp.ID); st != model.SpaceStatusReserved {
		t.Fatalf("space status = %q, want reserved", st)
	}
	if keys := f.published.Keys(); len(keys) != 1 || keys[0] != events.KeyBookingCreated {
		t.Fatalf("published = %v", keys)
	}
}

func TestBooking_OverlapIsRejectedWithoutWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	sp := f.space(t, "Room")

	if _, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}

	_, err := f.bookings.Book(ctx, bob.ID, sp.ID.String(), at(10, 30), at(11, 30))
	if !errors.Is(err, ErrTimeConflict) {
		t.Fatalf("expected ErrTimeConflict, got %v", err)
	}
	wantKind(t, err, apperror.KindConflict)

	views, err := f.bookings.ListForUser(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("conflicting booking was stored")
	}
	if len(f.published.Keys()) != 1 {
		t.Fatalf("failed booking published an event")
	}
}

func TestBooking_ConcurrentOverlapAdmitsOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sp := f.space(t, "Room").ID.String()

	const n = 10
	users := make([]*model.User, n)
	for i := range users {
		users[i] = f.user(t, "user"+strconv.Itoa(i))
	}

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// окна разные, но все пересекаются в 10:30-10:45
			_, errs[i] = f.bookings.Book(ctx, users[i].ID, sp, at(10, i), at(10, 45+i))
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for i, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrTimeConflict):
		default:
			t.Fatalf("user%d: unexpected error %v", i, err)
		}
	}
	if ok != 1 {
		t.Fatalf("successful bookings = %d, want 1", ok)
	}

	var booked int64
	if err := f.db.Model(&model.Booking{}).
		Where("space_id = ? AND status = ?", sp, model.BookingStatusBooked).
		Count(&booked).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if booked != 1 {
		t.Fatalf("booked rows = %d, want 1", booked)
	}
	if keys := f.published.Keys(); len(keys) != 1 {
		t.Fatalf("published = %v", keys)
	}
}

func TestBooking_ExpireDuringBookKeepsSpaceConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	sp := f.space(t, "Room")

	if _, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}

	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		bookErr   error
		expireErr error
		expired   []model.Booking
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, bookErr = f.bookings.Book(ctx, bob.ID, sp.ID.String(), at(13, 0), at(14, 0))
	}()
	go func() {
		defer wg.Done()
		<-start
		expired, expireErr = f.bookings.ExpireElapsed(ctx, day.Add(12*time.Hour))
	}()
	close(start)
	wg.Wait()

	if expireErr != nil {
		t.Fatalf("expire: %v", expireErr)
	}
	if len(expired) != 1 || expired[0].UserID != alice.ID {
		t.Fatalf("expired = %+v, want alice's booking", expired)
	}

	var got model.Space
	if err := f.db.First(&got, "id = ?", sp.ID).Error; err != nil {
		t.Fatalf("load space: %v", err)
	}
	var booked []model.Booking
	if err := f.db.Where("space_id = ? AND status = ?", sp.ID, model.BookingStatusBooked).
		Find(&booked).Error; err != nil {
		t.Fatalf("load bookings: %v", err)
	}

	switch {
	case bookErr == nil:
		// очистка успела раньше: бронь Боба заняла освободившееся пространство
		if got.Status != model.SpaceStatusReserved || len(booked) != 1 || booked[0].UserID != bob.ID {
			t.Fatalf("space %q with bookings %+v after successful book", got.Status, booked)
		}
		if got.StartTime == nil || !got.StartTime.Equal(booked[0].StartTime) {
			t.Fatalf("space window %v does not follow the booking", got.StartTime)
		}
	case errors.Is(bookErr, ErrSpaceUnavailable):
		// бронь пришла, пока пространство ещё было занято
		if got.Status != model.SpaceStatusAvailable || len(booked) != 0 || got.StartTime != nil {
			t.Fatalf("space %q window %v bookings %d after rejected book", got.Status, got.StartTime, len(booked))
		}
	default:
		t.Fatalf("book: unexpected error %v", bookErr)
	}
}

func TestBooking_InputValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	sp := f.space(t, "Room").ID.String()

	tests := []struct {
		name              string
		space, start, end string
		want              apperror.Kind
	}{
		{"missing space", "", at(10, 0), at(11, 0), apperror.KindValidation},
		{"missing end", sp, at(10, 0), "", apperror.KindValidation},
		{"malformed space", "room-1", at(10, 0), at(11, 0), apperror.KindValidation},
		{"malformed time", sp, "tomorrow", at(11, 0), apperror.KindValidation},
		{"end before start", sp, at(11, 0), at(10, 0), apperror.KindValidation},
		{"empty window", sp, at(10, 0), at(10, 0), apperror.KindValidation},
		{"unknown space", uuid.NewString(), at(10, 0), at(11, 0), apperror.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.Book(ctx, alice.ID, tt.space, tt.start, tt.end)
			wantKind(t, err, tt.want)
		})
	}
}

func TestBooking_ZonelessTimesUseServiceLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc := time.FixedZone("UTC+3", 3*60*60)
	svc := NewBookingService(repository.NewGormBookingRepository(f.db), f.published, f.clock, loc, nil)
	alice := f.user(t, "alice")
	sp := f.space(t, "Room")

	b, err := svc.Book(ctx, alice.ID, sp.ID.String(), "2030-01-01T13:00", "2030-01-01 14:00:00")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	want := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	if !b.StartTime.Equal(want) || b.StartTime.Location() != time.UTC {
		t.Fatalf("start = %v, want %v UTC", b.StartTime, want)
	}
}

func TestBooking_CancelReleasesSpace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	sp := f.space(t, "Room")

	if _, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}
	b, err := f.bookings.Cancel(ctx, alice.ID, sp.ID.String())
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if b.Status != model.BookingStatusCancelled {
		t.Fatalf("status = %q", b.Status)
	}
	if st := f.spaceStatus(t, sp.ID); st != model.SpaceStatusAvailable {
		t.Fatalf("space status = %q, want available", st)
	}

	// повторная отмена: действующей брони уже нет
	_, err = f.bookings.Cancel(ctx, alice.ID, sp.ID.String())
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	// отменённое окно можно занять снова
	if _, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("rebook: %v", err)
	}
}

func TestBooking_CancelOtherUsersBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	sp := f.space(t, "Room")

	if _, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}
	_, err := f.bookings.Cancel(ctx, bob.ID, sp.ID.String())
	wantKind(t, err, apperror.KindNotFound)
	if st := f.spaceStatus(t, sp.ID); st != model.SpaceStatusReserved {
		t.Fatalf("space status changed to %q", st)
	}

	_, err = f.bookings.Cancel(ctx, alice.ID, "")
	wantKind(t, err, apperror.KindValidation)
}

func TestBooking_ListForUserNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	first := f.space(t, "First")
	second := f.space(t, "Second")

	if _, err := f.bookings.Book(ctx, alice.ID, first.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.bookings.Cancel(ctx, alice.ID, first.ID.String()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.bookings.Book(ctx, alice.ID, second.ID.String(), at(12, 0), at(13, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}

	views, err := f.bookings.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if views[0].SpaceName != "Second" || views[1].Status != model.BookingStatusCancelled {
		t.Fatalf("unexpected order: %+v", views)
	}
}

func TestBooking_ExpireElapsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	sp := f.space(t, "Room")

	if _, err := f.bookings.Book(ctx, alice.ID, sp.ID.String(), at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("book: %v", err)
	}

	expired, err := f.bookings.ExpireElapsed(ctx, day.Add(10*time.Hour+30*time.Minute))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("booking expired before its end")
	}

	expired, err = f.bookings.ExpireElapsed(ctx, day.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("expired = %d, want 1", len(expired))
	}
	if st := f.spaceStatus(t, sp.ID); st != model.SpaceStatusAvailable {
		t.Fatalf("space status = %q, want available", st)
	}
	views, _ := f.bookings.ListForUser(ctx, alice.ID)
	if len(views) != 0 {
		t.Fatalf("expired booking rows not removed")
	}

	keys := f.published.Keys()
	if keys[len(keys)-1] != events.KeyBookingExpired {
		t.Fatalf("published = %v", keys)
	}

	log, err := f.audit.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(log) != 2 || log[0].EventType != model.EventTypeBookingExpired {
		t.Fatalf("audit log = %+v", log)
	}
}
