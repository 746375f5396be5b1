package protocol

// Credentials is the JSON object the credentials tool prints with --pipe.
// Only URLSuffix is required by the identity resolver; the rest is carried
// for other consumers of the same tool.
type Credentials struct {
	SiteGroup       string `json:"site_group"`
	SiteEnvironment string `json:"site_environment"`
	URL             string `json:"url,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	URLSuffix       string `json:"url_suffix"`
}
