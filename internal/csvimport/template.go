package csvimport

// TemplateFilename is the suggested download name for the sample file.
const TemplateFilename = "product_upload_template.csv"

// Template returns a fixed sample CSV illustrating the expected header and
// field format. It is generated in memory, not fetched, and is not coupled
// to the parser.
func Template() []byte {
	sample := `name,description,category,price,image_url,stock
"Wireless Bluetooth Headphones","High-quality wireless headphones with noise cancellation","Electronics",89.99,"https://example.com/img.jpg",50
"Stainless Steel Water Bottle","Insulated bottle that keeps drinks cold for 24 hours","Sports",24.50,"https://example.com/bottle.jpg",120
"Cotton Crew Neck T-Shirt","Soft breathable everyday t-shirt in classic fit","Fashion",14.99,,80
`

	return []byte(sample)
}
