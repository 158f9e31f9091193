// Package identity manages request identity context.
//
// An Identity carries the authenticated user, the API token used (if any)
// and request metadata such as the resolved client IP. Middleware stores the
// Identity in the request context; handlers retrieve it with Get.
package identity
