package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeShopDomain(t *testing.T) {
	valid := map[string]string{
		"my-shop.myshopify.com":              "my-shop.myshopify.com",
		"  My-Shop.MyShopify.com ":           "my-shop.myshopify.com",
		"my-shop":                            "my-shop.myshopify.com",
		"https://my-shop.myshopify.com":      "my-shop.myshopify.com",
		"http://my-shop.myshopify.com/admin": "my-shop.myshopify.com",
		"https://my-shop.myshopify.com/?x=1": "my-shop.myshopify.com",
		"shop1.myshopify.com":                "shop1.myshopify.com",
	}
	for in, want := range valid {
		t.Run(in, func(t *testing.T) {
			got, err := SanitizeShopDomain(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	invalid := []string{
		"",
		"   ",
		"shop1.example",
		"my_shop.myshopify.com",
		"-shop.myshopify.com",
		"shop-.myshopify.com",
		"my-shop.myshopify.com.evil.com",
		"evil.com/my-shop.myshopify.com",
		"a.myshopify.com",
	}
	for _, in := range invalid {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := SanitizeShopDomain(in)
			assert.ErrorIs(t, err, ErrInvalidShopDomain)
		})
	}
}

func TestShopDomainFromDest(t *testing.T) {
	assert.Equal(t, "shop.myshopify.com", ShopDomainFromDest("https://shop.myshopify.com"))
	assert.Equal(t, "shop.myshopify.com", ShopDomainFromDest("shop.myshopify.com"))
}

func TestSplitScopes(t *testing.T) {
	assert.Equal(t, []string{"read_orders", "write_products"}, SplitScopes(" read_orders, ,write_products,"))
	assert.Empty(t, SplitScopes(""))
	assert.Equal(t, "read_orders,write_products", JoinScopes([]string{"read_orders", "write_products"}))
}
