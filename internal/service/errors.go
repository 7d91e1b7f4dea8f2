package service

import "errors"

// Lookup failures. A transition that fails a lookup changes nothing.
var (
	ErrOrderNotFound    = errors.New("pedido nao encontrado")
	ErrTableNotFound    = errors.New("mesa nao encontrada")
	ErrDishNotFound     = errors.New("prato nao encontrado")
	ErrCategoryNotFound = errors.New("categoria nao encontrada")
	ErrCustomerNotFound = errors.New("cliente nao encontrado")
	ErrUserNotFound     = errors.New("utilizador nao encontrado")
	ErrItemNotFound     = errors.New("item nao encontrado")
)

// Rule violations.
var (
	ErrOrderClosed          = errors.New("o pedido ja esta fechado")
	ErrOrderNotClosed       = errors.New("o pedido ainda esta aberto")
	ErrOrderEmpty           = errors.New("o pedido nao tem itens")
	ErrInvalidQuantity      = errors.New("quantidade invalida")
	ErrInvalidPaymentMethod = errors.New("metodo de pagamento invalido")
	ErrInvalidOrderType     = errors.New("tipo de pedido invalido")
	ErrInvalidItemStatus    = errors.New("estado de item invalido")
	ErrInvalidAmount        = errors.New("valor invalido")
	ErrInvalidZone          = errors.New("zona invalida")
	ErrTableOccupied        = errors.New("a mesa tem pedidos abertos")
	ErrCustomerHasDebt      = errors.New("o cliente tem saldo em divida")
	ErrCategoryInUse        = errors.New("a categoria tem pratos associados")
	ErrDuplicateID          = errors.New("identificador ja existe")
	ErrInvalidCredentials   = errors.New("PIN invalido")
	ErrDuplicatePIN         = errors.New("PIN ja atribuido a outro utilizador")
	ErrInvalidSetting       = errors.New("configuracao invalida")
	ErrLastOwner            = errors.New("nao e possivel remover o ultimo proprietario")
)

// IsNotFound reports whether err is one of the lookup failures.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrOrderNotFound, ErrTableNotFound, ErrDishNotFound, ErrCategoryNotFound,
		ErrCustomerNotFound, ErrUserNotFound, ErrItemNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
