package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/gridshop/functions/core/access"
	"github.com/gridshop/functions/core/assets"
	"github.com/gridshop/functions/core/docstore"
	"github.com/gridshop/functions/core/events"
	"github.com/gridshop/functions/core/logger"
)

// Product is a shop product
type Product struct {
	Images      []string  `json:"images"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
}

type productRequest struct {
	UID     string          `json:"uid,omitempty"`
	Product *productPayload `json:"product"`
}

type productPayload struct {
	Images      []string    `json:"images"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Quantity    interface{} `json:"quantity"`
	Price       interface{} `json:"price"`
}

// addProduct adds a product to the shop of the authenticated principal.
//
// The images are uploaded to the asset host concurrently; if any upload
// fails the whole creation fails and nothing is persisted. Error
// responses use status 402 for wire compatibility with existing clients,
// even though 400 would be the conventional choice.
func (a *API) addProduct(w http.ResponseWriter, r *http.Request) {
	principal := access.PrincipalFromContext(r.Context())
	if principal == nil {
		sendEnvelope(w, http.StatusUnauthorized, envelope{
			Message: "Unauthorized",
			Code:    "authentication-error",
			Status:  false,
		})
		return
	}
	shopID := principal.UID

	body, _ := bodyFromContext(r.Context())
	var request productRequest
	if err := json.Unmarshal(body, &request); err != nil || request.Product == nil {
		sendEnvelope(w, http.StatusPaymentRequired, envelope{
			Message: "Bad Request: Incomplete parameters",
			Code:    "bad-request",
			Status:  false,
		})
		return
	}
	if err := validateProductPayload(request.Product); err != nil {
		a.reportError(r, err, map[string]interface{}{"component": "add-product"})
		sendEnvelope(w, http.StatusPaymentRequired, envelope{
			Message: "Bad Request: Incomplete parameters",
			Code:    "bad-request",
			Status:  false,
		})
		return
	}

	product, err := a.createProduct(r, shopID, request.Product)
	if err != nil {
		a.reportError(r, err, map[string]interface{}{"component": "add-product", "shop_id": shopID})
		sendEnvelope(w, http.StatusPaymentRequired, envelope{
			Message: "Request Failed",
			Code:    "api-error",
			Status:  false,
		})
		return
	}

	sendEnvelope(w, http.StatusOK, envelope{
		Message: "Product successfully created",
		Code:    "success",
		Status:  true,
		Data:    product,
	})
}

// createProduct uploads all images and persists the product document
// under shops/{shopID}/products/{productID}. All-or-nothing: the document
// is only written after every upload succeeded.
func (a *API) createProduct(r *http.Request, shopID string, payload *productPayload) (*Product, error) {
	price, err := parseNumber(payload.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %v", err)
	}
	quantity, err := parseNumber(payload.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %v", err)
	}

	// millisecond timestamp identifier. Two products created by the same
	// shop within the same millisecond collide, the second write wins.
	productID := strconv.FormatInt(a.now().UnixMilli(), 10)

	urls, err := a.uploadImages(r, shopID, productID, payload.Images)
	if err != nil {
		return nil, err
	}

	product := &Product{
		Images:      urls,
		Name:        payload.Name,
		Description: payload.Description,
		Quantity:    quantity,
		Price:       price,
		CreatedAt:   docstore.ServerTimestamp(),
	}

	collection := "shops/" + shopID + "/products"
	doc := docstore.Document{
		"images":      product.Images,
		"name":        product.Name,
		"description": product.Description,
		"quantity":    product.Quantity,
		"price":       product.Price,
		"createdAt":   product.CreatedAt,
	}
	if err := a.store.Set(r.Context(), collection, productID, doc); err != nil {
		return nil, err
	}

	payloadJSON, _ := json.Marshal(map[string]interface{}{
		"shop_id":    shopID,
		"product_id": productID,
		"product":    product,
	})
	a.notify(r, "products", events.OperationCreate, payloadJSON)

	logger.FromContext(r.Context()).Infoln("created product", productID, "for shop", shopID)
	return product, nil
}

// uploadImages fans out one upload per image and waits for all of them.
// The first failure cancels the remaining uploads and fails the batch;
// assets uploaded before the failure are orphaned on the host, there is
// no compensation.
func (a *API) uploadImages(r *http.Request, shopID, productID string, images []string) ([]string, error) {
	urls := make([]string, len(images))
	g, ctx := errgroup.WithContext(r.Context())
	for i, image := range images {
		i, image := i, image
		g.Go(func() error {
			key := assets.ProductImageKey(a.environment, shopID, productID, "image-"+strconv.Itoa(i))
			url, err := a.assets.UploadData(ctx, key, []byte(image))
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// parseNumber accepts JSON numbers and numeric strings, the way the
// clients send price and quantity. Non-finite values are rejected so a
// product document never carries NaN or infinity.
func parseNumber(value interface{}) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case string:
		var err error
		f, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, err
		}
	case json.Number:
		var err error
		f, err = v.Float64()
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("not a number: %v", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	return f, nil
}
