package htmldsl_test

import (
	"fmt"
	"os"

	"github.com/deicod/htmldsl"
)

func ExampleRender() {
	source := `<:def main(model)>
  <ul>
    <:for (item in model.items)>
      <li>{item}</li>
    </:for>
  </ul>
</:def>`

	if err := htmldsl.Render(source, `{"items": ["a", "b"]}`, os.Stdout); err != nil {
		fmt.Println(err)
	}
	// Output:
	// <ul>
	//     <li>
	//         a
	//     </li>
	//     <li>
	//         b
	//     </li>
	// </ul>
}

func ExampleParseString() {
	tmpl, err := htmldsl.ParseString(`<:def greet(name)>Hello {name}!</:def>
<:def main(model)><:if (model.formal)>Dear sir</:if><:else>{greet(model.name)}</:else></:def>`)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, model := range []string{`{"formal": true}`, `{"formal": false, "name": "Ada"}`} {
		out, err := tmpl.ExecuteToString(model)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(out)
	}
	// Output:
	// Dear sir
	// Hello Ada!
}

func ExampleIsSemanticsError() {
	_, err := htmldsl.ParseString(`<:def main(model)>{missing}</:def>`)
	fmt.Println(htmldsl.IsSemanticsError(err))
	// Output: true
}
