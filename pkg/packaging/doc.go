// Package packaging implements the Python packaging conventions that the
// upload pipeline validates against: project name rules and normalization
// (PEP 503), the version scheme (PEP 440), version specifiers, and the
// distribution filename formats for wheels and sdists.
package packaging
