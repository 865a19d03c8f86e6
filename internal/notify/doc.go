// Package notify delivers corridor verdicts to Slack, Teams or generic HTTP
// webhooks. Only unhealthy verdicts are sent unless on_healthy is set; a
// recovery after an unhealthy delivery is always sent. Delivery errors are
// logged and never returned to the caller.
package notify
