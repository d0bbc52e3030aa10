// Package ssl issues TLS certificates for sites after they are live.
//
// Two Provisioners are available, selected by tls.provider:
//
//   - certbot: runs "certbot certonly --webroot" through the executor.
//     Certificates land in /etc/letsencrypt/live/<domain>/.
//   - acme: obtains certificates in-process with lego, writing
//     fullchain.pem and privkey.pem under tls.cert_dir/<domain>/. The
//     account key is kept in tls.cert_dir/account.key.
//
// Both answer HTTP-01 challenges from the configured webroot, which the
// rendered site files serve at /.well-known/acme-challenge/. Issuance is
// best effort: a failure never undoes the plain-HTTP site.
//
// # Prerequisites
//
// The certbot provisioner needs certbot installed:
//
//	sudo apt install certbot
package ssl
