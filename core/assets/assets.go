/*Package assets uploads binary image data to an asset host and returns
public URLs.

There are currently two drivers: AWS S3 and an in-memory implementation
used by unit tests.
*/
package assets

import "context"

// Host defines the interface for the asset host
type Host interface {
	// UploadData uploads data under the given key and returns the public
	// URL. Errors from the host propagate verbatim; there is no retry.
	UploadData(ctx context.Context, key string, data []byte) (string, error)
}

// Folder returns the environment folder assets are stored under.
// Production uploads go to "shop-prod", everything else to "shop-staging".
func Folder(environment string) string {
	if environment == "production" {
		return "shop-prod"
	}
	return "shop-staging"
}

// ProductImageKey computes the deterministic destination path for a
// product image: {environment-folder}/{shopID}/{productID}/{name}.
func ProductImageKey(environment, shopID, productID, name string) string {
	return Folder(environment) + "/" + shopID + "/" + productID + "/" + name
}
