package shopify

// ProductsQuery выбирает страницу товаров со вложенными списками.
// Вложенные списки ограничены: 100 вариантов, 20 медиа, 10 коллекций, 50 метаполей.
// Что не поместилось, Admin API молча отбрасывает
const ProductsQuery = `query GetProducts($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        title
        handle
        description
        descriptionHtml
        status
        createdAt
        updatedAt
        publishedAt
        productType
        vendor
        tags
        totalInventory
        tracksInventory
        onlineStoreUrl
        seo {
          title
          description
        }
        options {
          id
          name
          values
        }
        variants(first: 100) {
          edges {
            node {
              id
              title
              price
              compareAtPrice
              sku
              barcode
              inventoryQuantity
              taxable
              inventoryPolicy
              availableForSale
              selectedOptions {
                name
                value
              }
              image {
                url
                altText
              }
            }
          }
        }
        media(first: 20) {
          edges {
            node {
              ... on MediaImage {
                id
                image {
                  url
                  altText
                  width
                  height
                }
                mediaContentType
              }
            }
          }
        }
        collections(first: 10) {
          edges {
            node {
              id
              title
              handle
            }
          }
        }
        metafields(first: 50) {
          edges {
            node {
              id
              namespace
              key
              value
              type
            }
          }
        }
      }
    }
  }
}`
