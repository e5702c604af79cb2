package pagedata

import "strings"

// Placeholder tokens stored in place of environment specific base URLs.
const (
	AssetsUploadURLToken = "|!|vcvAssetsUploadUrl|!|"
	UploadURLToken       = "|!|vcvUploadUrl|!|"
)

// PortableContent replaces absolute occurrences of the asset and upload base
// URLs with placeholder tokens so stored content survives domain moves. Both
// schemes and the JSON escaped-slash spelling are matched. The asset URL is
// replaced first since it normally lives below the upload URL.
func PortableContent(content, assetURL, uploadURL string) string {
	content = replaceBaseURL(content, assetURL, AssetsUploadURLToken)
	content = replaceBaseURL(content, uploadURL, UploadURLToken)
	return content
}

// ExpandPortableContent is the inverse of PortableContent for the given
// environment. Tokens are expanded to https URLs when the base URL had no
// scheme.
func ExpandPortableContent(content, assetURL, uploadURL string) string {
	if a := withScheme(assetURL); a != "" {
		content = strings.ReplaceAll(content, AssetsUploadURLToken, a)
	}
	if u := withScheme(uploadURL); u != "" {
		content = strings.ReplaceAll(content, UploadURLToken, u)
	}
	return content
}

func replaceBaseURL(content, base, token string) string {
	host := stripScheme(base)
	if host == "" {
		return content
	}
	escaped := strings.ReplaceAll(host, "/", `\/`)
	r := strings.NewReplacer(
		"https://"+host, token,
		"http://"+host, token,
		`https:\/\/`+escaped, token,
		`http:\/\/`+escaped, token,
	)
	return r.Replace(content)
}

func stripScheme(u string) string {
	u = strings.ReplaceAll(u, "http://", "")
	u = strings.ReplaceAll(u, "https://", "")
	return u
}

func withScheme(u string) string {
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}
