// Package ptax provides the PTAX quote extraction strategies.
//
// # Strategies
//
// ## API (indicator endpoint)
//
// Kind: "api"
// URL: https://www.bcb.gov.br/api/servico/sitebcb/indicadorCambio
//
// Fetches the exchange indicator list (the "conteudo" field) and keeps the
// entries whose "tipoCotacao" equals the closing marker ("Fechamento").
// The "moeda" label is mapped to the currency ("Dólar" -> USD,
// "Euro" -> EUR), "dataIndicador" (RFC 3339, UTC) becomes the quote date,
// and "valorCompra" / "valorVenda" keep their literal digits.
//
// ## Direct HTML (closing-rate page)
//
// Kind: "html"
// URL: https://ptax.bcb.gov.br/ptax_internet/consultarUltimaCotacaoDolar.do
//
// Fetches the page and picks the configured table, or the first table with
// a summary attribute, or the first table. The second row (the first one is
// the header) holds the date, buy and sell cells.
//
// ## Rendered DOM (browser)
//
// Kind: "rendered"
// URL: https://www.bcb.gov.br/
//
// Renders the page in the session browser and looks for the first table
// containing the marker (the currency name by default), then the first row
// of that table containing it. A leading label cell is skipped before the
// date, buy and sell cells are read.
//
// Every failure wraps one of ErrNetwork, ErrParse, ErrNoTableFound,
// ErrMalformedRow, ErrElementNotFound or ErrTimeout.
package ptax
