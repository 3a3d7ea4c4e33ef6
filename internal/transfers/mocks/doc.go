// Package mocks provides gomock implementations of the transfer persistence port.
package mocks

//go:generate mockgen -destination=mock_transfers.go -package=mocks github.com/vysogota0399/gophermart_transfers/internal/transfers Storage,UnitOfWork
