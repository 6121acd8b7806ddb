// Package style implements OpenAPI parameter serialization styles.
//
// Each supported style (simple, label, matrix, form, deepObject) is a
// Strategy in a lookup table. Transform dispatches on the parameter's JSON
// shape and decodes a raw wire string; Render is the inverse.
//
//	| style      | array            | array, exploded        | object             | object, exploded        |
//	|------------|------------------|------------------------|--------------------|-------------------------|
//	| simple     | a,b,c            | a,b,c                  | k1,v1,k2,v2        | k1=v1,k2=v2             |
//	| label      | .a,b,c           | .a.b.c                 | .k1,v1,k2,v2       | .k1=v1.k2=v2            |
//	| matrix     | ;name=a,b,c      | ;name=a;name=b;name=c  | ;name=k1,v1,k2,v2  | ;k1=v1;k2=v2            |
//	| form       | name=a,b,c       | name=a&name=b&name=c   | name=k1,v1,k2,v2   | k1=v1&k2=v2             |
//	| deepObject | -                | -                      | -                  | name[k1]=v1&name[k2]=v2 |
//
// Non-exploded label and matrix lists use commas, following RFC 6570
// rather than the OpenAPI examples.
//
// Elements are decoded as JSON literals where possible, so "42" becomes an
// integer, while a schema declaring type string keeps the text as is.
package style
