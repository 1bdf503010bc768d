package market

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"giftcard-market/internal/domain"

	"github.com/shopspring/decimal"
)

func TestListProduct(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	m.AddAccount(ctx, "Alice", nil)
	if _, err := m.ListProduct(ctx, "Alice", "Amazon.com", "1234512345", "$1,100.00", "$1,090.50"); err != nil {
		t.Fatalf("ListProduct: %v", err)
	}

	product, err := m.GetProduct(ctx, "Amazon.com", "1234512345")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.SellerName != "Alice" {
		t.Errorf("SellerName = %q, want Alice", product.SellerName)
	}
	if !product.Value.Equal(decimal.RequireFromString("1100")) {
		t.Errorf("Value = %s, want 1100", product.Value)
	}
	if !product.Price.Equal(decimal.RequireFromString("1090.5")) {
		t.Errorf("Price = %s, want 1090.5", product.Price)
	}
}

func TestListProductDuplicate(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	m.AddAccount(ctx, "Alice", nil)
	m.AddAccount(ctx, "Bob", nil)
	if _, err := m.ListProduct(ctx, "Alice", "Amazon.com", "1234512345", "$110.00", "$100.00"); err != nil {
		t.Fatalf("ListProduct: %v", err)
	}

	_, err := m.ListProduct(ctx, "Bob", "Amazon.com", "1234512345", "$110.00", "$100.00")
	var dup *domain.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want *DuplicateKeyError", err)
	}
	if !strings.Contains(err.Error(), "already listed") {
		t.Errorf("message = %q, want 'already listed'", err)
	}

	// The original listing must be untouched.
	product, _ := m.GetProduct(ctx, "Amazon.com", "1234512345")
	if product.SellerName != "Alice" {
		t.Fatalf("SellerName = %q, duplicate overwrote the listing", product.SellerName)
	}
}

func TestListProductUnknownSeller(t *testing.T) {
	m := newTestMarket(t)

	_, err := m.ListProduct(context.Background(), "Alice", "Amazon.com", "1234512345", "$100.00", "$90.00")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if verr.Field != "seller_name" || !strings.Contains(verr.Reason, "not found") {
		t.Errorf("error = %v, want seller_name not found", verr)
	}
}

func TestListProductValidationPersistsNothing(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	m.AddAccount(ctx, "Alice", nil)
	if _, err := m.ListProduct(ctx, "Alice", "Amazon.com", "1234512345", "$85.00", "$100.00"); err == nil {
		t.Fatal("ListProduct with price >= value succeeded")
	}

	keys, _ := m.AllKeys(ctx, domain.TypeProduct)
	if len(keys) != 0 {
		t.Fatalf("product keys = %v, want none", keys)
	}
}

// The canonical marketplace scenario: Alice sells at the default rate, a
// $110.00 card priced at $100.00 splits $15.00 to the house and $85.00 to
// Alice, and Bob ends up exactly $100.00 down.
func TestBuyProductScenario(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	m.AddAccount(ctx, "Alice", nil)
	m.AddAccount(ctx, "Bob", ratePtr("0.20"))
	if _, err := m.ListProduct(ctx, "Alice", "Amazon.com", "1234512345", "$110.00", "$100.00"); err != nil {
		t.Fatalf("ListProduct: %v", err)
	}

	product, _ := m.GetProduct(ctx, "Amazon.com", "1234512345")
	seller, _ := m.GetAccount(ctx, "Alice")
	if got, want := product.HouseCommission(seller.CommissionRate), decimal.RequireFromString("15"); !got.Equal(want) {
		t.Fatalf("HouseCommission = %s, want %s", got, want)
	}
	if got, want := product.SellersShare(seller.CommissionRate), decimal.RequireFromString("85"); !got.Equal(want) {
		t.Fatalf("SellersShare = %s, want %s", got, want)
	}

	receipt, err := m.BuyProduct(ctx, "Bob", "Amazon.com", "1234512345")
	if err != nil {
		t.Fatalf("BuyProduct: %v", err)
	}
	if receipt.Buyer != "Bob" || receipt.Seller != "Alice" {
		t.Errorf("receipt parties = %s/%s, want Bob/Alice", receipt.Buyer, receipt.Seller)
	}
	if !receipt.Price.Equal(decimal.RequireFromString("100")) {
		t.Errorf("receipt price = %s, want 100", receipt.Price)
	}

	buyer, _ := m.GetAccount(ctx, "Bob")
	if want := decimal.RequireFromString("-100"); !buyer.Balance.Equal(want) {
		t.Errorf("buyer balance = %s, want %s", buyer.Balance, want)
	}
	house, _ := m.HouseAccount(ctx)
	if want := decimal.RequireFromString("15"); !house.Balance.Equal(want) {
		t.Errorf("house balance = %s, want %s", house.Balance, want)
	}
	alice, _ := m.GetAccount(ctx, "Alice")
	if want := decimal.RequireFromString("85"); !alice.Balance.Equal(want) {
		t.Errorf("seller balance = %s, want %s", alice.Balance, want)
	}

	// The buyer's loss equals the house and seller gains combined.
	net := buyer.Balance.Add(house.Balance).Add(alice.Balance)
	if !net.IsZero() {
		t.Errorf("net balance = %s, want 0", net)
	}

	if product, _ := m.FetchProduct(ctx, "Amazon.com", "1234512345"); product != nil {
		t.Error("product still listed after purchase")
	}
}

func TestBuyProductSellerRate(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	// The commission comes from the seller's rate, not the buyer's.
	m.AddAccount(ctx, "Seller", ratePtr("0.20"))
	m.AddAccount(ctx, "Buyer", nil)
	m.ListProduct(ctx, "Seller", "Whole Foods", "8888877777", "$110.00", "$100.00")

	if _, err := m.BuyProduct(ctx, "Buyer", "Whole Foods", "8888877777"); err != nil {
		t.Fatalf("BuyProduct: %v", err)
	}

	house, _ := m.HouseAccount(ctx)
	if want := decimal.RequireFromString("20"); !house.Balance.Equal(want) {
		t.Errorf("house balance = %s, want %s", house.Balance, want)
	}
	seller, _ := m.GetAccount(ctx, "Seller")
	if want := decimal.RequireFromString("80"); !seller.Balance.Equal(want) {
		t.Errorf("seller balance = %s, want %s", seller.Balance, want)
	}
}

func TestBuyProductUnknownBuyer(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	m.AddAccount(ctx, "Alice", nil)
	m.ListProduct(ctx, "Alice", "Amazon.com", "1234512345", "$110.00", "$100.00")

	_, err := m.BuyProduct(ctx, "Nobody", "Amazon.com", "1234512345")
	var nferr *domain.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}

	// No state may change on a failed resolve.
	if product, _ := m.FetchProduct(ctx, "Amazon.com", "1234512345"); product == nil {
		t.Error("product removed by failed purchase")
	}
	alice, _ := m.GetAccount(ctx, "Alice")
	if !alice.Balance.IsZero() {
		t.Errorf("seller balance mutated: %s", alice.Balance)
	}
	house, _ := m.HouseAccount(ctx)
	if !house.Balance.IsZero() {
		t.Errorf("house balance mutated: %s", house.Balance)
	}
}

func TestBuyProductSellerRemoved(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	m.AddAccount(ctx, "Alice", nil)
	m.AddAccount(ctx, "Bob", nil)
	m.ListProduct(ctx, "Alice", "Amazon.com", "1234512345", "$110.00", "$100.00")

	// Sellers are validated at listing time; remove the account from
	// under the listing so the purchase-time resolve misses.
	if err := m.store.Delete(ctx, domain.TypeAccount, "Alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err := m.BuyProduct(ctx, "Bob", "Amazon.com", "1234512345")
	var nferr *domain.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if nferr.Type != domain.TypeAccount {
		t.Errorf("Type = %q, want Account", nferr.Type)
	}
	if want := []string{"Alice"}; !reflect.DeepEqual(nferr.Keys, want) {
		t.Errorf("Keys = %v, want %v", nferr.Keys, want)
	}

	// Seller resolution precedes every write, so nothing may change.
	bob, _ := m.GetAccount(ctx, "Bob")
	if !bob.Balance.IsZero() {
		t.Errorf("buyer balance mutated: %s", bob.Balance)
	}
	house, _ := m.HouseAccount(ctx)
	if !house.Balance.IsZero() {
		t.Errorf("house balance mutated: %s", house.Balance)
	}
	if product, _ := m.FetchProduct(ctx, "Amazon.com", "1234512345"); product == nil {
		t.Error("product removed by failed purchase")
	}
}

func TestBuyProductUnknownProduct(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	m.AddAccount(ctx, "Bob", nil)
	_, err := m.BuyProduct(ctx, "Bob", "Amazon.com", "1234512345")
	var nferr *domain.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if nferr.Type != domain.TypeProduct {
		t.Errorf("Type = %q, want Product", nferr.Type)
	}
}

func TestBuyProductSelfPurchase(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	// A seller buying their own listing must see both the debit and the
	// credit; neither write may be lost.
	m.AddAccount(ctx, "Alice", nil)
	m.ListProduct(ctx, "Alice", "Amazon.com", "1234512345", "$110.00", "$100.00")

	if _, err := m.BuyProduct(ctx, "Alice", "Amazon.com", "1234512345"); err != nil {
		t.Fatalf("BuyProduct: %v", err)
	}

	alice, _ := m.GetAccount(ctx, "Alice")
	if want := decimal.RequireFromString("-15"); !alice.Balance.Equal(want) {
		t.Fatalf("self-purchase balance = %s, want %s", alice.Balance, want)
	}
	house, _ := m.HouseAccount(ctx)
	if want := decimal.RequireFromString("15"); !house.Balance.Equal(want) {
		t.Fatalf("house balance = %s, want %s", house.Balance, want)
	}
}

func TestClearAllRemovesEveryType(t *testing.T) {
	m := newTestMarket(t)
	ctx := context.Background()

	m.AddAccount(ctx, "Alice", nil)
	m.ListProduct(ctx, "Alice", "Amazon.com", "1234512345", "$110.00", "$100.00")

	if err := m.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	keys, _ := m.AllKeys(ctx, "")
	if len(keys) != 0 {
		t.Fatalf("keys after ClearAll = %v", keys)
	}
}
