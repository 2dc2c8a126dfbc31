package key

type digraphPair struct{ a, b Code }

// digraphs is a subset of the RFC1345 table.
var digraphs = map[digraphPair]Code{
	{'a', ':'}: 'ä', {'o', ':'}: 'ö', {'u', ':'}: 'ü',
	{'A', ':'}: 'Ä', {'O', ':'}: 'Ö', {'U', ':'}: 'Ü',
	{'e', ':'}: 'ë', {'i', ':'}: 'ï', {'y', ':'}: 'ÿ',
	{'a', '\''}: 'á', {'e', '\''}: 'é', {'i', '\''}: 'í', {'o', '\''}: 'ó', {'u', '\''}: 'ú',
	{'A', '\''}: 'Á', {'E', '\''}: 'É', {'I', '\''}: 'Í', {'O', '\''}: 'Ó', {'U', '\''}: 'Ú',
	{'a', '!'}: 'à', {'e', '!'}: 'è', {'i', '!'}: 'ì', {'o', '!'}: 'ò', {'u', '!'}: 'ù',
	{'a', '>'}: 'â', {'e', '>'}: 'ê', {'i', '>'}: 'î', {'o', '>'}: 'ô', {'u', '>'}: 'û',
	{'a', '?'}: 'ã', {'n', '?'}: 'ñ', {'o', '?'}: 'õ', {'N', '?'}: 'Ñ',
	{'c', ','}: 'ç', {'C', ','}: 'Ç',
	{'a', 'a'}: 'å', {'A', 'A'}: 'Å', {'a', 'e'}: 'æ', {'A', 'E'}: 'Æ',
	{'o', '/'}: 'ø', {'O', '/'}: 'Ø', {'s', 's'}: 'ß',
	{'E', 'u'}: '€', {'P', 'd'}: '£', {'Y', 'e'}: '¥', {'C', 't'}: '¢',
	{'C', 'o'}: '©', {'R', 'g'}: '®', {'T', 'M'}: '™', {'S', 'E'}: '§',
	{'D', 'G'}: '°', {'M', 'y'}: 'µ', {'+', '-'}: '±', {'*', 'X'}: '×', {'-', ':'}: '÷',
	{'1', '2'}: '½', {'1', '4'}: '¼', {'3', '4'}: '¾',
	{'<', '<'}: '«', {'>', '>'}: '»', {'!', 'I'}: '¡', {'?', 'I'}: '¿',
	{'-', '>'}: '→', {'<', '-'}: '←', {'-', '!'}: '↑', {'-', 'v'}: '↓',
	{'a', '*'}: 'α', {'b', '*'}: 'β', {'g', '*'}: 'γ', {'d', '*'}: 'δ', {'p', '*'}: 'π',
	{'l', '*'}: 'λ', {'m', '*'}: 'μ', {'s', '*'}: 'σ', {'W', '*'}: 'Ω',
	{'N', 'S'}: 0xa0, {'O', 'K'}: '✓', {'X', 'X'}: '✗',
}

// Digraph combines two codes into one character. Both orders are tried.
// When no digraph exists the second code is returned with false.
func Digraph(a, b Code) (Code, bool) {
	if c, ok := digraphs[digraphPair{a, b}]; ok {
		return c, true
	}
	if c, ok := digraphs[digraphPair{b, a}]; ok {
		return c, true
	}
	return b, false
}
