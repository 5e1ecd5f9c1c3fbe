// Package normalize provides the shared data-cleaning helpers used by both
// source connectors.
//
// Hostname normalization is the contract the reconciliation join depends on:
// both connectors must apply the same fold before handing records over, so a
// PCE "web01.corp.example.com" and a CMDB "WEB01" land on the same key.
package normalize
