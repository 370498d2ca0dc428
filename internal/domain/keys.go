package domain

import "strconv"

// KeyPrefix namespaces all keys written by this service.
const KeyPrefix = "prodisco:"

// ProductKeyPrefix is the key prefix for product hashes, also used by the FT index PREFIX clause.
const ProductKeyPrefix = KeyPrefix + "product:"

// ProductIndexName is the FT index over product embeddings.
const ProductIndexName = ProductKeyPrefix + "idx"

// ProductKey returns the storage key for a product.
func ProductKey(id int64) string {
	return ProductKeyPrefix + strconv.FormatInt(id, 10)
}
