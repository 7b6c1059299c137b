package models

// Connection GraphQL connection вида { edges: [{ node }] }
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo *PageInfo `json:"pageInfo,omitempty"`
}

// Edge элемент connection
type Edge[T any] struct {
	Cursor string `json:"cursor,omitempty"`
	Node   T      `json:"node"`
}

// PageInfo метаданные курсорной пагинации
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Nodes возвращает узлы в порядке получения
func (c Connection[T]) Nodes() []T {
	nodes := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		nodes = append(nodes, e.Node)
	}
	return nodes
}

// ThrottleStatus состояние бюджета запросов Admin API
type ThrottleStatus struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// CatalogPage одна страница каталога. Живет только до добавления товаров в буфер
type CatalogPage struct {
	Products      []RawProduct
	EndCursor     *string
	HasNextPage   bool
	Throttle      *ThrottleStatus
	RequestedCost float64 // стоимость запроса в баллах Admin API
}

// SEO поля товара
type SEO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ProductOption определение опции товара
type ProductOption struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// RawProduct товар в том виде, в котором его возвращает Admin API.
// Вложенные списки усечены лимитами запроса: 100 вариантов, 20 медиа, 10 коллекций, 50 метаполей
type RawProduct struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Handle          string          `json:"handle"`
	Description     string          `json:"description"`
	DescriptionHTML string          `json:"descriptionHtml"`
	Status          string          `json:"status"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
	PublishedAt     *string         `json:"publishedAt"`
	ProductType     string          `json:"productType"`
	Vendor          string          `json:"vendor"`
	Tags            []string        `json:"tags"`
	TotalInventory  *int            `json:"totalInventory"`
	TracksInventory bool            `json:"tracksInventory"`
	OnlineStoreURL  *string         `json:"onlineStoreUrl"`
	SEO             SEO             `json:"seo"`
	Options         []ProductOption `json:"options"`

	Variants    Connection[Variant]    `json:"variants"`
	Media       Connection[Media]      `json:"media"`
	Collections Connection[Collection] `json:"collections"`
	Metafields  Connection[Metafield]  `json:"metafields"`
}

// SelectedOption значение опции варианта
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Image изображение
type Image struct {
	ID      string  `json:"id,omitempty"`
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
}

// Variant вариант товара. Price приходит десятичной строкой
type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Price             string           `json:"price"`
	CompareAtPrice    *string          `json:"compareAtPrice"`
	SKU               *string          `json:"sku"`
	Barcode           *string          `json:"barcode"`
	InventoryQuantity *int             `json:"inventoryQuantity"`
	Taxable           bool             `json:"taxable"`
	InventoryPolicy   string           `json:"inventoryPolicy"`
	AvailableForSale  bool             `json:"availableForSale"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
	Image             *Image           `json:"image"`
}

// Media медиа-элемент товара. Запрос выбирает поля только для MediaImage,
// у остальных типов узел приходит пустым
type Media struct {
	ID               string `json:"id,omitempty"`
	MediaContentType string `json:"mediaContentType,omitempty"`
	Image            *Image `json:"image,omitempty"`
}

// Collection коллекция, в которую входит товар
type Collection struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// Metafield метаполе товара
type Metafield struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// FlatRow одна строка выгрузки на пару (товар, вариант)
type FlatRow struct {
	Title             string  `json:"title"`
	Handle            string  `json:"handle"`
	Description       string  `json:"description"`
	ProductID         string  `json:"productId"`
	VariantID         string  `json:"variantId"`
	Price             float64 `json:"price"`
	SKU               *string `json:"sku"`
	AvailableForSale  bool    `json:"availableForSale"`
	InventoryQuantity *int    `json:"inventoryQuantity"`
	VariantTitle      string  `json:"variantTitle"`
	Image             *string `json:"image"`
}
