package handler

import (
	"quantum-bank/internal/adapter/http/dto"
	"quantum-bank/internal/core/domain"
	"quantum-bank/pkg/response"
)

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
		Balance:   a.Balance.StringFixed(2),
		CreatedAt: response.FormatTime(a.CreatedAt),
	}
}

func toChannelResponse(ch *domain.QuantumChannel) dto.ChannelResponse {
	resp := dto.ChannelResponse{
		ID:            ch.ID.String(),
		Status:        string(ch.Status),
		KeySource:     ch.KeySource,
		EstablishedAt: response.FormatTime(ch.EstablishedAt),
	}
	if ch.RevokedAt != nil {
		s := response.FormatTime(*ch.RevokedAt)
		resp.RevokedAt = &s
	}
	return resp
}

func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:           tx.ID.String(),
		Recipient:    tx.Recipient,
		Amount:       tx.Amount.StringFixed(2),
		Status:       string(tx.Status),
		CancelReason: tx.CancelReason,
		CreatedAt:    response.FormatTime(tx.CreatedAt),
	}
	if tx.ChannelRef != nil {
		s := tx.ChannelRef.String()
		resp.ChannelRef = &s
	}
	if tx.ProcessedAt != nil {
		s := response.FormatTime(*tx.ProcessedAt)
		resp.ProcessedAt = &s
	}
	return resp
}

func toTransactionResponses(txns []domain.Transaction) []dto.TransactionResponse {
	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}
	return items
}
