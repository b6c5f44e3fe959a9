package reports

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ClientProfile{}, &models.Product{}, &models.Invoice{}, &models.InvoiceItem{}))
	return db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: mustDecimal(t, price), Category: models.CategoryOther}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedInvoice(t *testing.T, db *gorm.DB, user models.User, status models.InvoiceStatus) models.Invoice {
	t.Helper()
	uid := user.ID
	inv := models.Invoice{UserID: uid, Status: status, CreatedByID: &uid}
	require.NoError(t, db.Create(&inv).Error)
	return inv
}

func seedItem(t *testing.T, db *gorm.DB, inv models.Invoice, p models.Product, qty int) {
	t.Helper()
	item := models.InvoiceItem{InvoiceID: inv.ID, ProductID: p.ID, Quantity: qty, Price: p.Price}
	require.NoError(t, db.Create(&item).Error)
}

func TestInvoiceTotal(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	user := seedUser(t, db, "alice")
	tv := seedProduct(t, db, "TV", "799.99")
	inv := seedInvoice(t, db, user, models.InvoiceStatusNew)
	seedItem(t, db, inv, tv, 2)

	total, err := svc.InvoiceTotal(inv.ID)
	require.NoError(t, err)
	require.True(t, total.Valid)
	require.Equal(t, "1599.98", total.Decimal.StringFixed(2))

	// An itemless invoice has no total, not a zero total.
	empty := seedInvoice(t, db, user, models.InvoiceStatusNew)
	total, err = svc.InvoiceTotal(empty.ID)
	require.NoError(t, err)
	require.False(t, total.Valid)
}

func TestTotalsFor(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	user := seedUser(t, db, "alice")
	book := seedProduct(t, db, "Book", "10.50")
	inv1 := seedInvoice(t, db, user, models.InvoiceStatusNew)
	inv2 := seedInvoice(t, db, user, models.InvoiceStatusNew)
	empty := seedInvoice(t, db, user, models.InvoiceStatusNew)
	seedItem(t, db, inv1, book, 1)
	seedItem(t, db, inv2, book, 3)

	totals, err := svc.TotalsFor([]uint{inv1.ID, inv2.ID, empty.ID})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	require.Equal(t, "10.50", totals[inv1.ID].StringFixed(2))
	require.Equal(t, "31.50", totals[inv2.ID].StringFixed(2))
	_, ok := totals[empty.ID]
	require.False(t, ok, "itemless invoice should be absent from the totals map")
}

func TestPopularProducts(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	user := seedUser(t, db, "alice")
	tv := seedProduct(t, db, "TV", "799.99")
	book := seedProduct(t, db, "Book", "10.50")
	once := seedProduct(t, db, "Lamp", "25.00")

	for i := 0; i < 3; i++ {
		inv := seedInvoice(t, db, user, models.InvoiceStatusNew)
		seedItem(t, db, inv, book, 1)
		if i < 2 {
			seedItem(t, db, inv, tv, 1)
		}
		if i == 0 {
			seedItem(t, db, inv, once, 1)
		}
	}

	popular, err := svc.PopularProducts()
	require.NoError(t, err)
	// Products referenced once (Lamp) are excluded; ordering is by reference
	// count descending.
	require.Len(t, popular, 2)
	require.Equal(t, book.ID, popular[0].ID)
	require.EqualValues(t, 3, popular[0].InvoiceCount)
	require.Equal(t, tv.ID, popular[1].ID)
	require.EqualValues(t, 2, popular[1].InvoiceCount)
}

func TestProductsInUsePartition(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	user := seedUser(t, db, "alice")
	used := seedProduct(t, db, "TV", "799.99")
	unused := seedProduct(t, db, "Lamp", "25.00")
	inv := seedInvoice(t, db, user, models.InvoiceStatusNew)
	seedItem(t, db, inv, used, 1)

	inUse, err := svc.ProductsInUse()
	require.NoError(t, err)
	require.Len(t, inUse, 1)
	require.Equal(t, used.ID, inUse[0].ID)

	idle, err := svc.ProductsUnused()
	require.NoError(t, err)
	require.Len(t, idle, 1)
	require.Equal(t, unused.ID, idle[0].ID)
}

func TestProductsByUserInvoices(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	tv := seedProduct(t, db, "TV", "799.99")
	book := seedProduct(t, db, "Book", "10.50")

	aliceInv := seedInvoice(t, db, alice, models.InvoiceStatusNew)
	seedItem(t, db, aliceInv, tv, 1)
	seedItem(t, db, aliceInv, tv, 2)
	bobInv := seedInvoice(t, db, bob, models.InvoiceStatusNew)
	seedItem(t, db, bobInv, book, 1)

	products, err := svc.ProductsByUserInvoices(alice.ID)
	require.NoError(t, err)
	// Distinct: the twice-referenced TV appears once, Bob's book not at all.
	require.Len(t, products, 1)
	require.Equal(t, tv.ID, products[0].ID)
}

func TestSystemTotals(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	// Empty system reports zero, not null.
	totals, err := svc.SystemTotals()
	require.NoError(t, err)
	require.EqualValues(t, 0, totals.TotalInvoices)
	require.EqualValues(t, 0, totals.TotalProducts)
	require.True(t, totals.TotalValue.IsZero())

	user := seedUser(t, db, "alice")
	book := seedProduct(t, db, "Book", "10.50")
	inv := seedInvoice(t, db, user, models.InvoiceStatusNew)
	seedItem(t, db, inv, book, 2)

	totals, err = svc.SystemTotals()
	require.NoError(t, err)
	require.EqualValues(t, 1, totals.TotalInvoices)
	require.EqualValues(t, 1, totals.TotalProducts)
	require.Equal(t, "21.00", totals.TotalValue.StringFixed(2))
}

func TestInvoiceBasicInfo(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	user := seedUser(t, db, "alice")
	book := seedProduct(t, db, "Book", "10.50")
	withItems := seedInvoice(t, db, user, models.InvoiceStatusSent)
	seedItem(t, db, withItems, book, 1)
	seedItem(t, db, withItems, book, 2)
	empty := seedInvoice(t, db, user, models.InvoiceStatusNew)

	rows, err := svc.InvoiceBasicInfo()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, withItems.ID, rows[0].ID)
	require.EqualValues(t, 2, rows[0].TotalItems)
	require.Equal(t, models.InvoiceStatusSent, rows[0].Status)
	require.Equal(t, empty.ID, rows[1].ID)
	require.EqualValues(t, 0, rows[1].TotalItems)
}

func TestUserAggregations(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	seedInvoice(t, db, alice, models.InvoiceStatusPaid)
	seedInvoice(t, db, alice, models.InvoiceStatusNew)
	seedInvoice(t, db, bob, models.InvoiceStatusNew)

	require.NoError(t, db.Create(&models.ClientProfile{UserID: alice.ID, TaxID: "TX-1"}).Error)
	require.NoError(t, db.Create(&models.ClientProfile{UserID: carol.ID}).Error)

	withInvoices, err := svc.UsersWithInvoices()
	require.NoError(t, err)
	// Alice owns two invoices but appears once.
	require.Len(t, withInvoices, 2)
	require.Equal(t, alice.ID, withInvoices[0].ID)
	require.Len(t, withInvoices[0].Invoices, 2)

	paid, err := svc.UsersWithPaidInvoices()
	require.NoError(t, err)
	require.Len(t, paid, 1)
	require.Equal(t, alice.ID, paid[0].ID)

	withProfile, err := svc.UsersWithClientProfile()
	require.NoError(t, err)
	require.Len(t, withProfile, 2)
	require.Equal(t, alice.ID, withProfile[0].ID)
	require.NotNil(t, withProfile[0].Profile)
	require.Equal(t, "TX-1", withProfile[0].Profile.TaxID)
}
